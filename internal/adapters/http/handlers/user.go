package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
	"github.com/globedrop/ngo-directory/internal/adapters/http/validation"
	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
)

// UserService is the application service used by UserHandler.
type UserService interface {
	FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error)
	Create(ctx context.Context, input domain.UserInput) (*domain.User, error)
	List(ctx context.Context, query url.Values) ([]*domain.User, error)
}

// UserHandler handles user endpoints.
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users.
//
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.Response{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.FieldErrorsResponse
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	result := validation.FromContext(c)
	if !result.IsEmpty() {
		forward(c, dto.NewUserInputError(http.StatusUnprocessableEntity, result.Errors()))
		return
	}

	var req dto.CreateUserRequest
	if err := dto.BindBody(c, &req); err != nil {
		forward(c, badBody(err))
		return
	}

	_, err := h.service.FindOne(ctx, domain.UserFilter{Email: req.Email})
	if err == nil {
		forward(c, dto.NewCustomError(dto.CodeAlreadyExist, http.StatusBadRequest, "User already exist."))
		return
	}

	if !domain.IsNotFound(err) {
		forward(c, err)
		return
	}

	user, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponse(dto.MessageUserCreated, dto.NewUserResponse(user)))
}

// List handles GET /users.
//
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "admin or member"
// @Param organization_id query string false "Organization ID"
// @Param limit query int false "Page size (max 100)"
// @Param skip query int false "Offset"
// @Success 200 {object} dto.Response{data=[]dto.UserResponse}
// @Failure 500 {object} dto.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse(dto.MessageOK, dto.NewUserResponses(users)))
}

// Get handles GET /users/:id.
//
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.Response{data=dto.UserResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	if fe, ok := validation.FromContext(c).FieldError("id"); ok {
		forward(c, dto.NewCustomError(dto.CodeInvalidUserID, http.StatusUnprocessableEntity, fe.Msg))
		return
	}

	id := c.Param("id")
	ctx := scope(c, logging.WithUserID, id)

	user, err := h.service.FindOne(ctx, domain.UserFilter{ID: id})
	if domain.IsNotFound(err) {
		forward(c, dto.NewCustomError(dto.CodeUserNotFound, http.StatusNotFound, "User Not Found"))
		return
	}

	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse(dto.MessageOK, dto.NewUserResponse(user)))
}

// RegisterRoutes registers user routes. guard may be nil.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	users := rg.Group("/users")

	users.GET("", h.List)
	users.GET("/:id", validation.Middleware(validation.GetUserByID), h.Get)
	users.POST("", chain(guard, validation.Middleware(validation.CreateUser), h.Create)...)
}
