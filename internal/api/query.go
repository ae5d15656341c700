package api

import (
	"net/url"
	"strconv"
)

// All - сентинел "без фильтра" из селекторов; в query не попадает.
const All = "all"

// ListOptions - параметры списочных эндпойнтов. Нулевые значения не передаются.
type ListOptions struct {
	Page   int
	Limit  int
	Search string

	Brand        string
	Model        string
	Year         int
	Fuel         string
	Transmission string
	Gearbox      string
	Condition    string
	Color        string
	City         string
	Location     string
	MinPrice     float64
	MaxPrice     float64

	SortBy string
	Status string
}

// Values строит query string. Пустые значения и сентинел All пропускаются.
func (o ListOptions) Values() url.Values {
	v := url.Values{}

	setInt := func(key string, n int) {
		if n > 0 {
			v.Set(key, strconv.Itoa(n))
		}
	}
	setStr := func(key, s string) {
		if s != "" && s != All {
			v.Set(key, s)
		}
	}
	setPrice := func(key string, p float64) {
		if p > 0 {
			v.Set(key, strconv.FormatFloat(p, 'f', -1, 64))
		}
	}

	setInt("page", o.Page)
	setInt("limit", o.Limit)
	setStr("search", o.Search)
	setStr("brand", o.Brand)
	setStr("model", o.Model)
	setInt("year", o.Year)
	setStr("fuel", o.Fuel)
	setStr("transmission", o.Transmission)
	setStr("gearbox", o.Gearbox)
	setStr("condition", o.Condition)
	setStr("color", o.Color)
	setStr("city", o.City)
	setStr("location", o.Location)
	setPrice("minPrice", o.MinPrice)
	setPrice("maxPrice", o.MaxPrice)
	setStr("sortBy", o.SortBy)
	setStr("status", o.Status)

	return v
}
