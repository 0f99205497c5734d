// Package query turns the list parameters of a collection request into a
// typed, store-independent query.
package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// DateLayout is the accepted format for date filter values.
const DateLayout = "2006-01-02"

// Request is the raw list request as received from a client.
type Request struct {
	Attributes []string
	Values     []string
	Sort       string
	Direction  string
	Page       int
	Size       int
}

// Params is a validated query. Filters holds equality matches keyed by
// stored field name with values already converted to their stored type.
type Params struct {
	Filters      map[string]interface{}
	Sort         string
	Direction    Direction
	Page         int
	Size         int
	WithoutCount bool
}

// Skip is the number of matches before the requested page. Build rejects
// pages whose offset does not fit an int.
func (p Params) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return int64((p.Page - 1) * p.Size)
}

// Result is one page of matches. Total is -1 when the count was skipped.
type Result[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

// NewResult echoes the page position of p next to the matches.
func NewResult[T any](items []T, total int64, p Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Total: total, Page: p.Page, Size: p.Size}
}

// Converter parses a raw filter value into the stored type.
type Converter func(raw string) (interface{}, error)

// String keeps the value as is.
func String(raw string) (interface{}, error) {
	return raw, nil
}

// ObjectID parses a 24 character hex id.
func ObjectID(raw string) (interface{}, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid id", raw)
	}
	return id, nil
}

// Date accepts YYYY-MM-DD or RFC 3339 and returns a UTC time.
func Date(raw string) (interface{}, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date (%s)", raw, DateLayout)
	}
	return t.UTC(), nil
}

// Int parses a base 10 integer, ignoring surrounding spaces.
func Int(raw string) (interface{}, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", raw)
	}
	return n, nil
}

// Schema is the closed set of filterable fields of one collection.
type Schema struct {
	Fields      map[string]Converter
	DefaultSort string
}

// Build validates req against the schema and fills in defaults:
// DefaultSort ascending, page 1, size 10.
func (s Schema) Build(req Request) (Params, error) {
	filters, err := s.BuildFilters(req.Attributes, req.Values)
	if err != nil {
		return Params{}, err
	}

	p := Params{
		Filters:   filters,
		Sort:      req.Sort,
		Direction: Direction(strings.ToLower(req.Direction)),
		Page:      req.Page,
		Size:      req.Size,
	}
	if p.Sort == "" {
		p.Sort = s.DefaultSort
	}
	if p.Direction == "" {
		p.Direction = Asc
	}
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Size == 0 {
		p.Size = DefaultSize
	}

	var fields []apperrors.FieldError
	if _, ok := s.Fields[p.Sort]; !ok {
		fields = append(fields, apperrors.FieldError{
			Field:   "sort",
			Rule:    "oneof",
			Message: fmt.Sprintf("sort must be one of %s", strings.Join(s.keys(), ", ")),
		})
	}
	if p.Direction != Asc && p.Direction != Desc {
		fields = append(fields, apperrors.FieldError{Field: "sort_direction", Rule: "oneof", Message: "sort_direction must be asc or desc"})
	}
	if p.Page < 1 {
		fields = append(fields, apperrors.FieldError{Field: "page", Rule: "min", Message: "page must be at least 1"})
	}
	if p.Size < 1 || p.Size > MaxSize {
		fields = append(fields, apperrors.FieldError{Field: "size", Rule: "range", Message: fmt.Sprintf("size must be between 1 and %d", MaxSize)})
	} else if p.Page > 1 && p.Page-1 > math.MaxInt/p.Size {
		fields = append(fields, apperrors.FieldError{Field: "page", Rule: "max", Message: fmt.Sprintf("page must be at most %d for size %d", math.MaxInt/p.Size+1, p.Size)})
	}
	if len(fields) > 0 {
		return Params{}, apperrors.Validation("invalid query parameters", fields...)
	}

	return p, nil
}

// BuildFilters pairs attributes with values positionally and converts each
// value with the converter of its attribute.
func (s Schema) BuildFilters(attributes, values []string) (map[string]interface{}, error) {
	if len(attributes) != len(values) {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeFilterMismatch,
			Message: "Wrong number of filter attributes and values!",
			Fields: []apperrors.FieldError{{
				Field:   "filter_values",
				Rule:    "len",
				Message: "Wrong number of filter attributes and values!",
			}},
		}
	}

	filters := make(map[string]interface{}, len(attributes))
	var fields []apperrors.FieldError
	for i, attr := range attributes {
		convert, ok := s.Fields[attr]
		if !ok {
			fields = append(fields, apperrors.FieldError{
				Field:   "filter_attributes",
				Rule:    "oneof",
				Message: fmt.Sprintf("unknown filter attribute %q, allowed: %s", attr, strings.Join(s.keys(), ", ")),
			})
			continue
		}
		v, err := convert(values[i])
		if err != nil {
			fields = append(fields, apperrors.FieldError{
				Field:   "filter_values",
				Rule:    "type",
				Message: fmt.Sprintf("%s: %v", attr, err),
			})
			continue
		}
		filters[attr] = v
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("invalid filters", fields...)
	}
	return filters, nil
}

func (s Schema) keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
