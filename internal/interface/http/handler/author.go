package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/interface/http/dto"
	"github.com/xiebiao/bookreviews/pkg/response"
)

// AuthorService is implemented by *author.Service.
type AuthorService interface {
	Create(ctx context.Context, a *author.Author) (*author.Author, error)
	Update(ctx context.Context, id primitive.ObjectID, p author.Patch) (*author.Author, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (*author.View, error)
	Query(ctx context.Context, req query.Request) (query.Result[*author.Author], error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AuthorHandler serves /authors.
type AuthorHandler struct {
	authors AuthorService
}

func NewAuthorHandler(authors AuthorService) *AuthorHandler {
	return &AuthorHandler{authors: authors}
}

func (h *AuthorHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/authors")
	g.POST("", h.Create)
	g.GET("", h.Query)
	g.GET("/:id", h.GetOne)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create
// @Summary      Create an author
// @Tags         Authors
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateAuthorRequest true "Author"
// @Success      200 {object} dto.AuthorResponse
// @Failure      422 {object} response.ValidationBody
// @Failure      500 {object} response.ErrorBody
// @Router       /authors [post]
func (h *AuthorHandler) Create(c *gin.Context) {
	var req dto.CreateAuthorRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.authors.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAuthorResponse(a))
}

// Update
// @Summary      Update an author
// @Tags         Authors
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Author id"
// @Param        request body dto.PatchAuthorRequest true "Fields to change"
// @Success      200 {object} dto.AuthorResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /authors/{id} [patch]
func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PatchAuthorRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.authors.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAuthorResponse(a))
}

// GetOne
// @Summary      Get an author with its number of books
// @Tags         Authors
// @Produce      json
// @Param        id path string true "Author id"
// @Success      200 {object} dto.AuthorDetailResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /authors/{id} [get]
func (h *AuthorHandler) GetOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	v, err := h.authors.GetOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAuthorDetailResponse(v))
}

// Query
// @Summary      List authors
// @Tags         Authors
// @Produce      json
// @Param        filter_attributes[] query []string false "Filter keys (name, bio)" collectionFormat(multi)
// @Param        filter_values[]     query []string false "Filter values, paired with filter_attributes[]" collectionFormat(multi)
// @Param        sort                query string   false "Sort key" default(name)
// @Param        sort_direction      query string   false "asc or desc" default(asc)
// @Param        page                query int      false "Page, from 1" default(1)
// @Param        size                query int      false "Page size, at most 100" default(10)
// @Success      200 {object} dto.Page[dto.AuthorResponse]
// @Failure      422 {object} response.ValidationBody
// @Router       /authors [get]
func (h *AuthorHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if !bindQuery(c, &req) {
		return
	}

	res, err := h.authors.Query(c.Request.Context(), req.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPage(res, dto.NewAuthorResponse))
}

// Delete
// @Summary      Delete an author
// @Description  Also deletes all books of the author and their reviews.
// @Tags         Authors
// @Param        id path string true "Author id"
// @Success      204
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.authors.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
