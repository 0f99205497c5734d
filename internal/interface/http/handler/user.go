package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/user"
	"github.com/xiebiao/bookreviews/internal/interface/http/dto"
	"github.com/xiebiao/bookreviews/pkg/response"
)

// UserService is implemented by *user.Service.
type UserService interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	Update(ctx context.Context, id primitive.ObjectID, p user.Patch) (*user.User, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (*user.User, error)
	Query(ctx context.Context, req query.Request) (query.Result[*user.User], error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserHandler serves /users.
type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.POST("", h.Create)
	g.GET("", h.Query)
	g.GET("/:id", h.GetOne)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create
// @Summary      Create a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateUserRequest true "User"
// @Success      200 {object} dto.UserResponse
// @Failure      422 {object} response.ValidationBody
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.users.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewUserResponse(u))
}

// Update
// @Summary      Update a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id      path string               true "User id"
// @Param        request body dto.PatchUserRequest true "Fields to change"
// @Success      200 {object} dto.UserResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PatchUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.users.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewUserResponse(u))
}

// GetOne
// @Summary      Get a user
// @Tags         Users
// @Produce      json
// @Param        id path string true "User id"
// @Success      200 {object} dto.UserResponse
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /users/{id} [get]
func (h *UserHandler) GetOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := h.users.GetOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewUserResponse(u))
}

// Query
// @Summary      List users
// @Tags         Users
// @Produce      json
// @Param        filter_attributes[] query []string false "Filter keys (name, birthday, email, phone)" collectionFormat(multi)
// @Param        filter_values[]     query []string false "Filter values, paired with filter_attributes[]" collectionFormat(multi)
// @Param        sort                query string   false "Sort key" default(name)
// @Param        sort_direction      query string   false "asc or desc" default(asc)
// @Param        page                query int      false "Page, from 1" default(1)
// @Param        size                query int      false "Page size, at most 100" default(10)
// @Success      200 {object} dto.Page[dto.UserResponse]
// @Failure      422 {object} response.ValidationBody
// @Router       /users [get]
func (h *UserHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if !bindQuery(c, &req) {
		return
	}

	res, err := h.users.Query(c.Request.Context(), req.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPage(res, dto.NewUserResponse))
}

// Delete
// @Summary      Delete a user
// @Description  Also deletes every review the user wrote.
// @Tags         Users
// @Param        id path string true "User id"
// @Success      204
// @Failure      404 {object} response.ErrorBody
// @Failure      422 {object} response.ValidationBody
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
