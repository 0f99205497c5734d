// Package memory keeps collections in process memory. It backs the
// "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

// store is one collection. Rows are copied on the way in and out so callers
// never share memory with the store.
type store[E any] struct {
	name     string
	idOf     func(*E) *primitive.ObjectID
	field    func(*E, string) interface{}
	notFound func(primitive.ObjectID) error

	mu   sync.RWMutex
	rows map[primitive.ObjectID]E
}

func newStore[E any](name string, idOf func(*E) *primitive.ObjectID, field func(*E, string) interface{}, notFound func(primitive.ObjectID) error) *store[E] {
	return &store[E]{
		name:     name,
		idOf:     idOf,
		field:    field,
		notFound: notFound,
		rows:     make(map[primitive.ObjectID]E),
	}
}

func (s *store[E]) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Database(err, s.name+" "+op+" failed")
	}
	return nil
}

func (s *store[E]) save(ctx context.Context, e *E) (*E, error) {
	if err := s.check(ctx, "save"); err != nil {
		return nil, err
	}
	row := *e
	if id := s.idOf(&row); id.IsZero() {
		*id = primitive.NewObjectID()
	}

	s.mu.Lock()
	s.rows[*s.idOf(&row)] = row
	s.mu.Unlock()

	out := row
	return &out, nil
}

func (s *store[E]) saveMany(ctx context.Context, es []*E) error {
	if err := s.check(ctx, "save many"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range es {
		row := *e
		s.rows[*s.idOf(&row)] = row
	}
	return nil
}

func (s *store[E]) find(ctx context.Context, id primitive.ObjectID) (*E, error) {
	if err := s.check(ctx, "find"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	row, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok {
		return nil, s.notFound(id)
	}
	return &row, nil
}

// where returns matching rows ordered by id.
func (s *store[E]) where(ctx context.Context, match func(*E) bool) ([]*E, error) {
	if err := s.check(ctx, "find"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]*E, 0)
	for _, row := range s.rows {
		row := row
		if match == nil || match(&row) {
			out = append(out, &row)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return s.idOf(out[i]).Hex() < s.idOf(out[j]).Hex()
	})
	return out, nil
}

func (s *store[E]) delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.check(ctx, "delete"); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.rows, id)
	s.mu.Unlock()
	return nil
}

func (s *store[E]) deleteWhere(ctx context.Context, match func(*E) bool) (int64, error) {
	if err := s.check(ctx, "delete"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, row := range s.rows {
		if match(&row) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *store[E]) count(ctx context.Context, match func(*E) bool) (int64, error) {
	rows, err := s.where(ctx, match)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// query applies equality filters, sorts on p.Sort with the id as tie
// breaker and cuts the requested page.
func (s *store[E]) query(ctx context.Context, p query.Params) ([]*E, int64, error) {
	rows, err := s.where(ctx, func(e *E) bool {
		for k, want := range p.Filters {
			if !equal(s.field(e, k), want) {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(s.field(rows[i], p.Sort), s.field(rows[j], p.Sort))
		if p.Direction == query.Desc {
			c = -c
		}
		return c < 0
	})

	total := int64(len(rows))
	if p.WithoutCount {
		total = -1
	}

	start := int(p.Skip())
	if start > len(rows) {
		start = len(rows)
	}
	end := start + p.Size
	if p.Size <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func equal(a, b interface{}) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case time.Time:
		return av.Compare(b.(time.Time))
	case primitive.ObjectID:
		return strings.Compare(av.Hex(), b.(primitive.ObjectID).Hex())
	}
	return 0
}

func in(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
