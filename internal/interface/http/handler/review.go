package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/interface/http/dto"
	"github.com/xiebiao/bookreviews/pkg/response"
)

// ReviewService is implemented by *review.Service.
type ReviewService interface {
	Create(ctx context.Context, r *review.Review) (*review.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, p review.Patch) (*review.Review, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (*review.Review, error)
	Query(ctx context.Context, req query.Request) (query.Result[*review.Review], error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReviewHandler serves /reviews.
type ReviewHandler struct {
	reviews ReviewService
}

func NewReviewHandler(reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/reviews")
	g.POST("", h.Create)
	g.GET("", h.Query)
	g.GET("/:id", h.GetOne)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create
// @Summary      Create a review
// @Description  The book and the user must exist.
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateReviewRequest true "Review"
// @Success      200 {object} dto.ReviewResponse
// @Failure      404 {object} response.ErrorBody "Book or user not found"
// @Failure      422 {object} response.ValidationBody
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.reviews.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReviewResponse(r))
}

// Update
// @Summary      Update a review
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Review id"
// @Param        request body dto.PatchReviewRequest true "Fields to change"
// @Success      200 {object} dto.ReviewResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /reviews/{id} [patch]
func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PatchReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.reviews.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReviewResponse(r))
}

// GetOne
// @Summary      Get a review
// @Tags         Reviews
// @Produce      json
// @Param        id path string true "Review id"
// @Success      200 {object} dto.ReviewResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /reviews/{id} [get]
func (h *ReviewHandler) GetOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := h.reviews.GetOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReviewResponse(r))
}

// Query
// @Summary      List reviews
// @Tags         Reviews
// @Produce      json
// @Param        filter_attributes[] query []string false "Filter keys (rating, comment, book_id, user_id)" collectionFormat(multi)
// @Param        filter_values[]     query []string false "Filter values, paired with filter_attributes[]" collectionFormat(multi)
// @Param        sort                query string   false "Sort key" default(comment)
// @Param        sort_direction      query string   false "asc or desc" default(asc)
// @Param        page                query int      false "Page, from 1" default(1)
// @Param        size                query int      false "Page size, at most 100" default(10)
// @Success      200 {object} dto.Page[dto.ReviewResponse]
// @Failure      422 {object} response.ValidationBody
// @Router       /reviews [get]
func (h *ReviewHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if !bindQuery(c, &req) {
		return
	}

	res, err := h.reviews.Query(c.Request.Context(), req.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPage(res, dto.NewReviewResponse))
}

// Delete
// @Summary      Delete a review
// @Tags         Reviews
// @Param        id path string true "Review id"
// @Success      204
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
