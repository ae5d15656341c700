package selector

import (
	"context"

	"github.com/pribylovaa/car-market/internal/catalog"
)

// Model - селектор модели. Без марки показывает модели всех марок,
// с маркой - только её модели.
type Model struct {
	*Selector

	cat   *catalog.Catalog
	brand string
}

// NewModel создаёт селектор модели над каталогом.
func NewModel(cat *catalog.Catalog, opts Options) *Model {
	m := &Model{cat: cat}
	m.Selector = newSelector(KindModel, m.loaderFor(""), opts)

	return m
}

// Brand - текущая марка.
func (m *Model) Brand() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.brand
}

// SetBrand сбрасывает список, страницу и поиск и загружает модели новой
// марки. All и пустая строка - все марки. Та же марка - без изменений.
func (m *Model) SetBrand(ctx context.Context, brand string) error {
	if brand == All {
		brand = ""
	}

	m.mu.Lock()
	if brand == m.brand {
		m.mu.Unlock()
		return nil
	}

	m.brand = brand
	m.source = m.loaderFor(brand)
	m.state.Items = []string{}
	m.state.Page = 0
	m.state.HasMore = false
	m.state.Search = ""
	m.mu.Unlock()

	m.deb.Stop()

	return m.Load(ctx)
}

func (m *Model) loaderFor(brand string) Loader {
	cat := m.cat
	if brand == "" {
		return func(_ context.Context, q catalog.Query) (catalog.Page, error) {
			return cat.Models(q), nil
		}
	}

	return func(_ context.Context, q catalog.Query) (catalog.Page, error) {
		return cat.ModelsByBrand(brand, q), nil
	}
}
