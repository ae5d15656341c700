// selector - состояние выпадающих списков марки и модели с бесконечной
// прокруткой и отложенным поиском поверх catalog.
//
// Переходы одного экземпляра:
//
//	Idle → Loading(page=1) → Idle                    - монтирование, смена марки
//	Idle → Loading(page=p+1) → Idle                  - подгрузка при прокрутке
//	Idle → Debouncing → Loading(page=1, q) → Idle    - поиск
//
// Каждая загрузка получает номер поколения; результат загрузки, которую
// перекрыла более новая, отбрасывается. Пока идёт загрузка, подгрузка
// при прокрутке подавляется.
package selector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pribylovaa/car-market/internal/catalog"
	"github.com/pribylovaa/car-market/internal/metrics"
	"github.com/pribylovaa/car-market/internal/pkg/debounce"
	"github.com/pribylovaa/car-market/internal/pkg/log"
)

// All - значение пункта "Все": родителю уходит пустой фильтр.
const All = "all"

// Значения по умолчанию.
const (
	DefaultPageSize        = 10
	DefaultDebounce        = 300 * time.Millisecond
	DefaultScrollThreshold = 50
)

// Виды селекторов (метка метрик и логов).
const (
	KindBrand = "brand"
	KindModel = "model"
)

// State - снимок состояния селектора.
type State struct {
	Items   []string
	Page    int
	HasMore bool
	Loading bool
	Search  string
	Value   string
}

// Loader отдаёт страницу выборки.
type Loader func(ctx context.Context, q catalog.Query) (catalog.Page, error)

// Options - параметры селектора.
type Options struct {
	PageSize int
	// Debounce - задержка поиска; 0 - DefaultDebounce, < 0 - без задержки.
	Debounce time.Duration
	// ScrollThreshold - расстояние до низа списка (px), с которого грузится следующая страница.
	ScrollThreshold int
	// OnChange получает выбранное значение; для All - пустую строку.
	OnChange func(value string)
	// OnUpdate вызывается после каждого изменения состояния (вне блокировки).
	OnUpdate func(State)
	Metrics  *metrics.Metrics
}

// Selector - общий механизм; Brand и Model задают источник.
type Selector struct {
	kind      string
	pageSize  int
	threshold int
	onChange  func(string)
	onUpdate  func(State)
	metrics   *metrics.Metrics
	deb       *debounce.Debouncer

	mu     sync.Mutex
	state  State
	gen    uint64
	source Loader
}

func newSelector(kind string, src Loader, opts Options) *Selector {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ScrollThreshold <= 0 {
		opts.ScrollThreshold = DefaultScrollThreshold
	}

	return &Selector{
		kind:      kind,
		pageSize:  opts.PageSize,
		threshold: opts.ScrollThreshold,
		onChange:  opts.OnChange,
		onUpdate:  opts.OnUpdate,
		metrics:   opts.Metrics,
		deb:       debounce.New(opts.Debounce),
		source:    src,
		state:     State{Items: []string{}},
	}
}

// State возвращает копию текущего состояния.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Load загружает первую страницу с текущим поиском, заменяя список.
func (s *Selector) Load(ctx context.Context) error {
	return s.fetch(ctx, 1, false)
}

// LoadMore дописывает следующую страницу, пропуская уже загруженные значения.
// Ничего не делает во время загрузки и когда страниц больше нет.
func (s *Selector) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	next := s.state.Page + 1
	s.mu.Unlock()

	return s.fetch(ctx, next, true)
}

// OnScroll - обработчик прокрутки открытого списка. Подгружает следующую
// страницу, когда до низа осталось не больше порога. true - подгрузка запущена.
func (s *Selector) OnScroll(ctx context.Context, scrollTop, scrollHeight, clientHeight int) (bool, error) {
	if scrollHeight-scrollTop-clientHeight > s.threshold {
		return false, nil
	}

	s.mu.Lock()
	blocked := s.state.Loading || !s.state.HasMore
	s.mu.Unlock()
	if blocked {
		return false, nil
	}

	return true, s.LoadMore(ctx)
}

// SetSearch меняет строку поиска сразу, а перезагрузку откладывает.
// Очищенный поиск возвращает первую страницу без фильтра.
// Возвращает функцию отмены отложенной загрузки.
func (s *Selector) SetSearch(ctx context.Context, q string) (cancel func()) {
	s.mu.Lock()
	s.state.Search = q
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	return s.deb.Do(func() {
		if err := s.Load(ctx); err != nil {
			log.From(ctx).Warn("selector_search_failed",
				slog.String("op", "selector.SetSearch"),
				slog.String("kind", s.kind),
				slog.String("err", err.Error()),
			)
		}
	})
}

// SetValue задаёт внешнее значение. Непустое значение, кроме All, всегда
// присутствует в списке: если его нет среди загруженных, оно ставится первым.
func (s *Selector) SetValue(v string) {
	s.mu.Lock()
	s.state.Value = v
	s.state.Items = withValue(s.state.Items, v)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Select - выбор пункта пользователем. All сбрасывает фильтр родителя.
func (s *Selector) Select(v string) string {
	out := v
	if v == All {
		out = ""
	}

	s.SetValue(out)

	if s.onChange != nil {
		s.onChange(out)
	}

	return out
}

// Close отменяет отложенный поиск.
func (s *Selector) Close() {
	s.deb.Stop()
}

// fetch - единственная точка загрузки. appendMode - подгрузка следующей страницы.
func (s *Selector) fetch(ctx context.Context, page int, appendMode bool) error {
	const op = "selector.fetch"

	ctx, l := log.With(ctx, slog.String("op", op), slog.String("kind", s.kind))

	s.mu.Lock()
	if appendMode && (s.state.Loading || !s.state.HasMore) {
		s.mu.Unlock()
		return nil
	}

	s.gen++
	gen := s.gen
	s.state.Loading = true
	q := catalog.Query{Page: page, Limit: s.pageSize, Search: s.state.Search}
	src := s.source
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	p, err := src(ctx, q)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.metrics.IncSelectorLoad(s.kind, true)
		l.Debug("selector_stale_load_dropped", slog.Int("page", page))
		return nil
	}

	s.state.Loading = false
	if err != nil {
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return err
	}

	var items []string
	if appendMode {
		var skipped int
		items, skipped = appendUnique(s.state.Items, p.Items)
		s.metrics.AddSelectorDuplicates(s.kind, skipped)
	} else {
		items = append([]string{}, p.Items...)
	}

	s.state.Items = withValue(items, s.state.Value)
	s.state.Page = p.Page
	s.state.HasMore = p.HasMore()
	snap = s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncSelectorLoad(s.kind, false)
	s.notify(snap)

	return nil
}

func (s *Selector) snapshotLocked() State {
	st := s.state
	st.Items = append([]string(nil), s.state.Items...)
	return st
}

func (s *Selector) notify(st State) {
	if s.onUpdate != nil {
		s.onUpdate(st)
	}
}

// appendUnique дописывает next к items, пропуская уже присутствующие значения.
func appendUnique(items, next []string) ([]string, int) {
	seen := make(map[string]struct{}, len(items)+len(next))
	out := make([]string, 0, len(items)+len(next))
	for _, it := range items {
		seen[it] = struct{}{}
		out = append(out, it)
	}

	skipped := 0
	for _, it := range next {
		if _, ok := seen[it]; ok {
			skipped++
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}

	return out, skipped
}

// withValue ставит v первым, если его нет в items.
func withValue(items []string, v string) []string {
	if v == "" || v == All {
		return items
	}

	for _, it := range items {
		if it == v {
			return items
		}
	}

	return append([]string{v}, items...)
}
