package selector

import (
	"context"

	"github.com/pribylovaa/car-market/internal/catalog"
)

// Brand - селектор марки.
type Brand struct {
	*Selector
}

// NewBrand создаёт селектор марки над каталогом.
func NewBrand(cat *catalog.Catalog, opts Options) *Brand {
	src := func(_ context.Context, q catalog.Query) (catalog.Page, error) {
		return cat.Brands(q), nil
	}

	return &Brand{Selector: newSelector(KindBrand, src, opts)}
}
