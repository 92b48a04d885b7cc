package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
	"github.com/globedrop/ngo-directory/internal/adapters/http/validation"
	"github.com/globedrop/ngo-directory/internal/app"
	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
)

// OrganizationService is the application service used by OrganizationHandler.
type OrganizationService interface {
	FindOne(ctx context.Context, filter domain.OrganizationFilter, opts app.FindOptions) (*domain.Organization, error)
	Create(ctx context.Context, input domain.OrganizationInput) (*domain.Organization, error)
	FindOneAndUpdate(ctx context.Context, filter domain.OrganizationFilter, patch domain.OrganizationPatch) (*domain.Organization, error)
	Delete(ctx context.Context, filter domain.OrganizationFilter) error
	List(ctx context.Context, query url.Values) ([]*domain.Organization, error)
	FindAdminsByOrganization(ctx context.Context, query url.Values) ([]*domain.User, error)
}

// OrganizationHandler handles organization endpoints.
type OrganizationHandler struct {
	service OrganizationService
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(service OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// Create handles POST /organizations.
//
// @Summary Create an organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param body body dto.CreateOrganizationRequest true "Organization"
// @Success 201 {object} dto.Response{data=dto.OrganizationResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.FieldErrorsResponse
// @Router /organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	logging.FromContext(ctx).DebugContext(ctx, "create organization called")

	result := validation.FromContext(c)
	if !result.IsEmpty() {
		forward(c, dto.NewUserInputError(http.StatusUnprocessableEntity, result.Errors()))
		return
	}

	var req dto.CreateOrganizationRequest
	if err := dto.BindBody(c, &req); err != nil {
		forward(c, badBody(err))
		return
	}

	_, err := h.service.FindOne(ctx, domain.OrganizationFilter{Name: req.Name}, app.FindOptions{})
	if err == nil {
		forward(c, dto.NewCustomError(dto.CodeAlreadyExist, http.StatusBadRequest, "Organization already exist."))
		return
	}

	if !domain.IsNotFound(err) {
		forward(c, err)
		return
	}

	org, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponse(dto.MessageOrganizationCreated, dto.NewOrganizationResponse(org)))
}

// List handles GET /organizations. The query string is passed through.
//
// @Summary List organizations
// @Tags organizations
// @Produce json
// @Param org_name query string false "Exact organization name"
// @Param limit query int false "Page size (max 100)"
// @Param skip query int false "Offset"
// @Success 200 {object} dto.Response{data=[]dto.OrganizationResponse}
// @Failure 500 {object} dto.ErrorResponse
// @Router /organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	orgs, err := h.service.List(ctx, c.Request.URL.Query())
	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse(dto.MessageOK, dto.NewOrganizationResponses(orgs)))
}

// Admins handles GET /organizations/admins.
//
// @Summary List organization admins
// @Tags organizations
// @Produce json
// @Param organization query string false "Organization ID"
// @Success 200 {object} dto.Response{data=[]dto.UserResponse}
// @Failure 500 {object} dto.ErrorResponse
// @Router /organizations/admins [get]
func (h *OrganizationHandler) Admins(c *gin.Context) {
	ctx := c.Request.Context()

	admins, err := h.service.FindAdminsByOrganization(ctx, c.Request.URL.Query())
	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse(dto.MessageOK, dto.NewUserResponses(admins)))
}

// Get handles GET /organizations/:id. Admins are populated unless
// populate=false is passed.
//
// @Summary Get an organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Param populate query bool false "Include admins" default(true)
// @Success 200 {object} dto.Response{data=dto.OrganizationResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) Get(c *gin.Context) {
	if invalidOrganizationID(c) {
		return
	}

	id := c.Param("id")
	ctx := scope(c, logging.WithOrganizationID, id)
	opts := app.FindOptions{Populate: c.DefaultQuery("populate", "true") != "false"}

	org, err := h.service.FindOne(ctx, domain.OrganizationFilter{ID: id}, opts)
	if domain.IsNotFound(err) {
		forward(c, organizationNotFound())
		return
	}

	if err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse(dto.MessageOK, dto.NewOrganizationResponse(org)))
}

// Update handles PUT /organizations/:id as a partial update.
//
// @Summary Update an organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param body body dto.UpdateOrganizationRequest true "Fields to change"
// @Success 200 {object} dto.Response{data=dto.OrganizationResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.FieldErrorsResponse
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) Update(c *gin.Context) {
	if invalidOrganizationID(c) {
		return
	}

	id := c.Param("id")
	ctx := scope(c, logging.WithOrganizationID, id)

	result := validation.FromContext(c)
	if !result.IsEmpty() {
		forward(c, dto.NewUserInputError(http.StatusUnprocessableEntity, result.Errors()))
		return
	}

	var req dto.UpdateOrganizationRequest
	if err := dto.BindBody(c, &req); err != nil {
		forward(c, badBody(err))
		return
	}

	if req.Name != nil {
		existing, err := h.service.FindOne(ctx, domain.OrganizationFilter{Name: *req.Name}, app.FindOptions{})

		switch {
		case err == nil && existing.ID != id:
			forward(c, dto.NewCustomError(dto.CodeAlreadyExist, http.StatusBadRequest, "organization name already exist."))
			return
		case err != nil && !domain.IsNotFound(err):
			forward(c, err)
			return
		}
	}

	org, err := h.service.FindOneAndUpdate(ctx, domain.OrganizationFilter{ID: id}, req.ToPatch())
	if domain.IsNotFound(err) {
		forward(c, organizationNotFound())
		return
	}

	if err != nil {
		forward(c, err)
		return
	}

	logging.FromContext(ctx).DebugContext(ctx, "organization updated")

	c.JSON(http.StatusOK, dto.NewResponse(dto.MessageOrganizationUpdated, dto.NewOrganizationResponse(org)))
}

// Delete handles DELETE /organizations/:id. It answers 202 whether or not
// the organization existed.
//
// @Summary Delete an organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 202 {object} dto.Response
// @Failure 422 {object} dto.ErrorResponse
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) Delete(c *gin.Context) {
	if invalidOrganizationID(c) {
		return
	}

	id := c.Param("id")
	ctx := scope(c, logging.WithOrganizationID, id)

	if err := h.service.Delete(ctx, domain.OrganizationFilter{ID: id}); err != nil {
		forward(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewResponse(dto.MessageDeleted, nil))
}

// RegisterRoutes registers organization routes on the given router group.
// Mutating routes are wrapped with guard, which may be nil.
func (h *OrganizationHandler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	orgs := rg.Group("/organizations")

	orgs.GET("", h.List)
	orgs.GET("/admins", h.Admins)
	orgs.GET("/:id", validation.Middleware(validation.GetOrganizationByID), h.Get)
	orgs.POST("", chain(guard, validation.Middleware(validation.CreateOrganization), h.Create)...)
	orgs.PUT("/:id", chain(guard, validation.Middleware(validation.UpdateOrganization), h.Update)...)
	orgs.DELETE("/:id", chain(guard, validation.Middleware(validation.DeleteOrganization), h.Delete)...)
}

// invalidOrganizationID forwards INVALID_ORGANIZATION_ID when the id rule
// failed and reports whether it did.
func invalidOrganizationID(c *gin.Context) bool {
	fe, ok := validation.FromContext(c).FieldError("id")
	if !ok {
		return false
	}

	forward(c, dto.NewCustomError(dto.CodeInvalidOrganizationID, http.StatusUnprocessableEntity, fe.Msg))

	return true
}

func organizationNotFound() *dto.APIError {
	return dto.NewCustomError(dto.CodeOrganizationNotFound, http.StatusNotFound, "Organization Not Found")
}
