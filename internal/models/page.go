package models

// Page - страница списочного ответа бэкенда.
type Page[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// HasMore - есть ли следующая страница.
func (p Page[T]) HasMore() bool {
	return p.Page < p.TotalPages
}
