package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/interface/http/dto"
	"github.com/xiebiao/bookreviews/pkg/response"
)

// BookService is implemented by *book.Service.
type BookService interface {
	Create(ctx context.Context, b *book.Book) (*book.Book, error)
	Update(ctx context.Context, id primitive.ObjectID, p book.Patch) (*book.Book, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (*book.View, error)
	Query(ctx context.Context, req query.Request) (query.Result[*book.Book], error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// BookHandler serves /books.
type BookHandler struct {
	books BookService
}

func NewBookHandler(books BookService) *BookHandler {
	return &BookHandler{books: books}
}

func (h *BookHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/books")
	g.POST("", h.Create)
	g.GET("", h.Query)
	g.GET("/:id", h.GetOne)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create
// @Summary      Create a book
// @Description  The author must exist.
// @Tags         Books
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookRequest true "Book"
// @Success      200 {object} dto.BookResponse
// @Failure      404 {object} response.ErrorBody "Author not found"
// @Failure      422 {object} response.ValidationBody
// @Router       /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.books.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(b))
}

// Update
// @Summary      Update a book
// @Description  A changed author_id must reference an existing author.
// @Tags         Books
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Book id"
// @Param        request body dto.PatchBookRequest true "Fields to change"
// @Success      200 {object} dto.BookResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /books/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PatchBookRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.books.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(b))
}

// GetOne
// @Summary      Get a book with its average rating
// @Tags         Books
// @Produce      json
// @Param        id path string true "Book id"
// @Success      200 {object} dto.BookDetailResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /books/{id} [get]
func (h *BookHandler) GetOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	v, err := h.books.GetOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookDetailResponse(v))
}

// Query
// @Summary      List books
// @Tags         Books
// @Produce      json
// @Param        filter_attributes[] query []string false "Filter keys (isbn, title, description, publication_date, author_id)" collectionFormat(multi)
// @Param        filter_values[]     query []string false "Filter values, paired with filter_attributes[]" collectionFormat(multi)
// @Param        sort                query string   false "Sort key" default(title)
// @Param        sort_direction      query string   false "asc or desc" default(asc)
// @Param        page                query int      false "Page, from 1" default(1)
// @Param        size                query int      false "Page size, at most 100" default(10)
// @Success      200 {object} dto.Page[dto.BookResponse]
// @Failure      422 {object} response.ValidationBody
// @Router       /books [get]
func (h *BookHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if !bindQuery(c, &req) {
		return
	}

	res, err := h.books.Query(c.Request.Context(), req.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPage(res, dto.NewBookResponse))
}

// Delete
// @Summary      Delete a book
// @Description  Also deletes all reviews of the book.
// @Tags         Books
// @Param        id path string true "Book id"
// @Success      204
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.books.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
