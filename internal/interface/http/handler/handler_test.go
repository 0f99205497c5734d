package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/domain/rules"
	"github.com/xiebiao/bookreviews/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

// fakeAuthors returns canned results and records what it was called with.
type fakeAuthors struct {
	created *author.Author
	patch   author.Patch
	req     query.Request
	view    *author.View
	err     error
}

func (f *fakeAuthors) Create(_ context.Context, a *author.Author) (*author.Author, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = primitive.NewObjectID()
	f.created = a
	return a, nil
}

func (f *fakeAuthors) Update(_ context.Context, id primitive.ObjectID, p author.Patch) (*author.Author, error) {
	f.patch = p
	if f.err != nil {
		return nil, f.err
	}
	if p.IsEmpty() {
		return nil, rules.ErrEmptyPatch
	}
	return &author.Author{ID: id, Name: *p.Name}, nil
}

func (f *fakeAuthors) GetOne(_ context.Context, id primitive.ObjectID) (*author.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeAuthors) Query(_ context.Context, req query.Request) (query.Result[*author.Author], error) {
	f.req = req
	if f.err != nil {
		return query.Result[*author.Author]{}, f.err
	}
	items := []*author.Author{{ID: primitive.NewObjectID(), Name: "Octavia Butler"}}
	return query.Result[*author.Author]{Items: items, Total: 11, Page: 2, Size: 5}, nil
}

func (f *fakeAuthors) Delete(context.Context, primitive.ObjectID) error {
	return f.err
}

type fakeBooks struct {
	BookService
	created *book.Book
	err     error
}

func (f *fakeBooks) Create(_ context.Context, b *book.Book) (*book.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	b.ID = primitive.NewObjectID()
	f.created = b
	return b, nil
}

type fakeReviews struct {
	ReviewService
	err error
}

func (f *fakeReviews) Create(_ context.Context, r *review.Review) (*review.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	r.ID = primitive.NewObjectID()
	return r, nil
}

func newEngine(register ...func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidators()
	r := gin.New()
	v1 := r.Group("/api/v1")
	for _, reg := range register {
		reg(v1)
	}
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func firstField(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok, "expected an errors list, got %v", body)
	require.NotEmpty(t, errs)
	return errs[0].(map[string]interface{})
}

func TestAuthorHandler_Create(t *testing.T) {
	svc := &fakeAuthors{}
	r := newEngine(NewAuthorHandler(svc).Register)

	w := do(r, http.MethodPost, "/api/v1/authors", `{"name":"Octavia Butler","bio":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Octavia Butler", body["name"])
	assert.Equal(t, svc.created.ID.Hex(), body["id"])
}

func TestAuthorHandler_CreateValidation(t *testing.T) {
	r := newEngine(NewAuthorHandler(&fakeAuthors{}).Register)

	tests := []struct {
		name  string
		body  string
		field string
		rule  string
	}{
		{"short name", `{"name":"Al","bio":"x"}`, "name", "min"},
		{"missing bio", `{"name":"Octavia Butler"}`, "bio", "required"},
		{"wrong type", `{"name":42,"bio":"x"}`, "name", "type"},
		{"broken json", `{"name":`, "body", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/authors", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			f := firstField(t, decode(t, w))
			assert.Equal(t, tt.field, f["field"])
			assert.Equal(t, tt.rule, f["rule"])
		})
	}
}

func TestAuthorHandler_GetOne(t *testing.T) {
	id := primitive.NewObjectID()
	svc := &fakeAuthors{view: &author.View{Author: &author.Author{ID: id, Name: "Octavia Butler"}, BooksCount: 3}}
	r := newEngine(NewAuthorHandler(svc).Register)

	w := do(r, http.MethodGet, "/api/v1/authors/"+id.Hex(), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(3), body["books_count"])
	assert.Equal(t, id.Hex(), body["id"])
}

func TestAuthorHandler_NotFound(t *testing.T) {
	id := primitive.NewObjectID()
	r := newEngine(NewAuthorHandler(&fakeAuthors{err: author.NotFound(id)}).Register)

	w := do(r, http.MethodGet, "/api/v1/authors/"+id.Hex(), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Author with id "+id.Hex()+" not found", decode(t, w)["detail"])

	w = do(r, http.MethodDelete, "/api/v1/authors/"+id.Hex(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorHandler_MalformedID(t *testing.T) {
	r := newEngine(NewAuthorHandler(&fakeAuthors{}).Register)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := do(r, method, "/api/v1/authors/not-an-id", "")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		f := firstField(t, decode(t, w))
		assert.Equal(t, "id", f["field"])
		assert.Equal(t, "objectid", f["rule"])
	}
}

func TestAuthorHandler_Update(t *testing.T) {
	svc := &fakeAuthors{}
	r := newEngine(NewAuthorHandler(svc).Register)
	id := primitive.NewObjectID()

	w := do(r, http.MethodPatch, "/api/v1/authors/"+id.Hex(), `{"name":"Octavia E. Butler"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.patch.Name)
	assert.Nil(t, svc.patch.Bio)

	w = do(r, http.MethodPatch, "/api/v1/authors/"+id.Hex(), `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "All fields cannot be empty", firstField(t, decode(t, w))["message"])
}

func TestAuthorHandler_Delete(t *testing.T) {
	r := newEngine(NewAuthorHandler(&fakeAuthors{}).Register)

	w := do(r, http.MethodDelete, "/api/v1/authors/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAuthorHandler_Query(t *testing.T) {
	svc := &fakeAuthors{}
	r := newEngine(NewAuthorHandler(svc).Register)

	w := do(r, http.MethodGet,
		"/api/v1/authors?filter_attributes[]=name&filter_values[]=Octavia%20Butler&sort=name&sort_direction=desc&page=2&size=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"name"}, svc.req.Attributes)
	assert.Equal(t, []string{"Octavia Butler"}, svc.req.Values)
	assert.Equal(t, "desc", svc.req.Direction)

	body := decode(t, w)
	assert.Equal(t, float64(11), body["total"])
	assert.Equal(t, float64(3), body["pages"])
	assert.Len(t, body["items"], 1)
}

func TestAuthorHandler_QueryErrors(t *testing.T) {
	svc := &fakeAuthors{err: &apperrors.AppError{
		Code:    apperrors.ErrCodeFilterMismatch,
		Message: "Wrong number of filter attributes and values!",
	}}
	r := newEngine(NewAuthorHandler(svc).Register)

	w := do(r, http.MethodGet, "/api/v1/authors?filter_attributes[]=name", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Wrong number of filter attributes and values!", firstField(t, decode(t, w))["message"])

	w = do(r, http.MethodGet, "/api/v1/authors?page=first", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthorHandler_InternalErrorIsHidden(t *testing.T) {
	r := newEngine(NewAuthorHandler(&fakeAuthors{err: apperrors.Database(assert.AnError, "authors find failed")}).Register)

	w := do(r, http.MethodGet, "/api/v1/authors", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode(t, w)["detail"])
}

func TestBookHandler_Create(t *testing.T) {
	svc := &fakeBooks{}
	r := newEngine(NewBookHandler(svc).Register)
	authorID := primitive.NewObjectID()

	w := do(r, http.MethodPost, "/api/v1/books", `{
		"isbn": "9780061054884",
		"title": "The Dispossessed",
		"description": "An ambiguous utopia",
		"publication_date": "1974-05-01",
		"author_id": "`+authorID.Hex()+`"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, authorID, svc.created.AuthorID)
	assert.True(t, svc.created.PublicationDate.Equal(time.Date(1974, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1974-05-01", decode(t, w)["publication_date"])
}

func TestBookHandler_CreateRejectsBadReferences(t *testing.T) {
	r := newEngine(NewBookHandler(&fakeBooks{}).Register)

	w := do(r, http.MethodPost, "/api/v1/books", `{
		"isbn": "9780061054884",
		"title": "The Dispossessed",
		"description": "An ambiguous utopia",
		"publication_date": "May 1974",
		"author_id": "nope"
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	got := map[string]string{}
	for _, e := range decode(t, w)["errors"].([]interface{}) {
		f := e.(map[string]interface{})
		got[f["field"].(string)] = f["rule"].(string)
	}
	assert.Equal(t, map[string]string{"publication_date": "date", "author_id": "objectid"}, got)
}

func TestReviewHandler_CreateMissingBook(t *testing.T) {
	bookID := primitive.NewObjectID()
	r := newEngine(NewReviewHandler(&fakeReviews{err: book.NotFound(bookID)}).Register)

	w := do(r, http.MethodPost, "/api/v1/reviews", `{
		"rating": 4,
		"comment": "Great",
		"book_id": "`+bookID.Hex()+`",
		"user_id": "`+primitive.NewObjectID().Hex()+`"
	}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["detail"], bookID.Hex())
}

func TestReviewHandler_RatingRange(t *testing.T) {
	r := newEngine(NewReviewHandler(&fakeReviews{}).Register)

	w := do(r, http.MethodPost, "/api/v1/reviews", `{
		"rating": 6,
		"comment": "Great",
		"book_id": "`+primitive.NewObjectID().Hex()+`",
		"user_id": "`+primitive.NewObjectID().Hex()+`"
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	f := firstField(t, decode(t, w))
	assert.Equal(t, "rating", f["field"])
	assert.Equal(t, "max", f["rule"])
}
