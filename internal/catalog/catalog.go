// catalog - синхронный сервис над статическим справочником марка → модели:
// сортировка, поиск и постраничная выдача без сетевого ввода-вывода.
//
// Каталог неизменяем после New и безопасен для конкурентного чтения.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLimit - размер страницы, если не задан ни в New, ни в запросе.
const DefaultLimit = 10

// Dataset - справочник: марка → модели (как в источнике, с возможными дублями).
type Dataset map[string][]string

// Query - параметры выборки.
//
// Нормализация (по аналогии с серверными лимитами):
//   - Page < 1 -> 1;
//   - Limit <= 0 -> лимит каталога;
//   - Search обрезается по пробелам; пустая строка - "без фильтра".
type Query struct {
	Page   int
	Limit  int
	Search string
}

// Page - страница выдачи.
type Page struct {
	Items      []string
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// HasMore - есть ли следующая страница.
func (p Page) HasMore() bool {
	return p.Page < p.TotalPages
}

// Catalog - подготовленный справочник.
type Catalog struct {
	limit   int
	brands  []string
	models  []string
	byBrand map[string][]string
}

// New готовит справочник: модели каждой марки дедуплицируются (точное
// совпадение) и сортируются без учёта регистра; общий список моделей
// строится по всем маркам с той же обработкой.
func New(ds Dataset, defaultLimit int) *Catalog {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	col := collate.New(language.Und, collate.IgnoreCase)

	c := &Catalog{
		limit:   defaultLimit,
		brands:  make([]string, 0, len(ds)),
		byBrand: make(map[string][]string, len(ds)),
	}

	var all []string
	for brand, models := range ds {
		if brand == "" {
			continue
		}

		c.brands = append(c.brands, brand)

		uniq := dedupe(models)
		sortFold(col, uniq)
		c.byBrand[brand] = uniq

		all = append(all, uniq...)
	}

	sortFold(col, c.brands)

	c.models = dedupe(all)
	sortFold(col, c.models)

	return c
}

// Brands возвращает марки. С поиском - все совпадения одной страницей.
func (c *Catalog) Brands(q Query) Page {
	return c.searchOrPage(c.brands, q)
}

// Models возвращает все модели всех марок. С поиском - все совпадения одной страницей.
func (c *Catalog) Models(q Query) Page {
	return c.searchOrPage(c.models, q)
}

// ModelsByBrand возвращает модели одной марки. В отличие от Brands и Models
// результаты поиска здесь тоже разбиваются на страницы.
// Неизвестная марка - пустая страница.
func (c *Catalog) ModelsByBrand(brand string, q Query) Page {
	q = c.normalize(q)

	items := c.byBrand[brand]
	if q.Search != "" {
		items = filter(items, q.Search)
	}

	return paginate(items, q.Page, q.Limit)
}

// HasBrand - есть ли марка в справочнике (точное совпадение).
func (c *Catalog) HasBrand(brand string) bool {
	_, ok := c.byBrand[brand]
	return ok
}

// Len - число марок.
func (c *Catalog) Len() int { return len(c.brands) }

func (c *Catalog) searchOrPage(items []string, q Query) Page {
	q = c.normalize(q)

	if q.Search == "" {
		return paginate(items, q.Page, q.Limit)
	}

	matches := filter(items, q.Search)
	return Page{
		Items:      matches,
		Page:       1,
		Limit:      q.Limit,
		Total:      len(matches),
		TotalPages: 1,
	}
}

func (c *Catalog) normalize(q Query) Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = c.limit
	}
	q.Search = strings.TrimSpace(q.Search)

	return q
}

// paginate режет items на страницы. Страница за последней - пустая, не ошибка.
// Арифметика не переполняется при любых page >= 1 и limit >= 1.
func paginate(items []string, page, limit int) Page {
	n := len(items)

	totalPages := 1
	if n > 0 {
		totalPages = n / limit
		if n%limit != 0 {
			totalPages++
		}
	}

	out := Page{
		Items:      []string{},
		Page:       page,
		Limit:      limit,
		Total:      n,
		TotalPages: totalPages,
	}

	if n == 0 || page-1 >= totalPages {
		return out
	}

	// page-1 < totalPages, поэтому start < n.
	start := (page - 1) * limit
	end := n
	if limit < n-start {
		end = start + limit
	}

	out.Items = append(out.Items, items[start:end]...)
	return out
}

// filter - подстрока без учёта регистра.
func filter(items []string, search string) []string {
	needle := strings.ToLower(search)

	out := []string{}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it), needle) {
			out = append(out, it)
		}
	}

	return out
}

// dedupe убирает точные дубли и пустые строки, сохраняя порядок первого вхождения.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}

	return out
}

// sortFold - сортировка без учёта регистра; при равенстве - побайтово,
// чтобы "X5" и "x5" всегда шли в одном порядке.
func sortFold(col *collate.Collator, items []string) {
	sort.SliceStable(items, func(i, j int) bool {
		if r := col.CompareString(items[i], items[j]); r != 0 {
			return r < 0
		}
		return items[i] < items[j]
	})
}
