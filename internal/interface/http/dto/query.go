package dto

import "github.com/xiebiao/bookreviews/internal/domain/query"

// QueryRequest holds the collection query string:
//
//	?filter_attributes[]=author_id&filter_values[]=65a1...&sort=title&sort_direction=desc&page=2&size=20
//
// Everything beyond type conversion is checked by the entity schema.
type QueryRequest struct {
	FilterAttributes []string `form:"filter_attributes[]"`
	FilterValues     []string `form:"filter_values[]"`
	Sort             string   `form:"sort"`
	SortDirection    string   `form:"sort_direction"`
	Page             int      `form:"page"`
	Size             int      `form:"size"`
}

func (q QueryRequest) ToRequest() query.Request {
	return query.Request{
		Attributes: q.FilterAttributes,
		Values:     q.FilterValues,
		Sort:       q.Sort,
		Direction:  q.SortDirection,
		Page:       q.Page,
		Size:       q.Size,
	}
}

// Page is the collection envelope, typed for the API docs.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total" example:"42"`
	Page  int   `json:"page" example:"1"`
	Size  int   `json:"size" example:"10"`
	Pages int   `json:"pages" example:"5"`
}

// NewPage maps a query result through convert.
func NewPage[E any, T any](res query.Result[E], convert func(E) T) Page[T] {
	items := make([]T, len(res.Items))
	for i, e := range res.Items {
		items[i] = convert(e)
	}

	pages := 0
	if res.Size > 0 && res.Total > 0 {
		pages = int((res.Total + int64(res.Size) - 1) / int64(res.Size))
	}
	return Page[T]{Items: items, Total: res.Total, Page: res.Page, Size: res.Size, Pages: pages}
}
