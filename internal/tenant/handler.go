package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsync/internal/logger"
	"shopsync/pkg/errors"
)

// Handler exposes the binding management API consumed by the onboarding
// flow (OAuth and embedded UI are external; they call into these routes).
type Handler struct {
	repo     Repository
	resolver *Resolver
	logger   logger.Logger
}

func NewHandler(repo Repository, resolver *Resolver, log logger.Logger) *Handler {
	return &Handler{
		repo:     repo,
		resolver: resolver,
		logger:   log,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		bindings := v1.Group("/bindings")
		{
			bindings.GET("", h.ListBindings)
			bindings.POST("", h.CreateBinding)
			bindings.GET("/:id", h.GetBinding)
			bindings.PUT("/:id/destination", h.UpdateDestination)
			bindings.DELETE("/:id", h.DeleteBinding)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// ListBindings godoc
// @Summary      List bindings for a storefront
// @Description  Get every tenant binding attached to the given storefront
// @Tags         bindings
// @Produce      json
// @Param        storefront  query     string  true  "Storefront identifier"
// @Success      200  {array}   Binding
// @Failure      500  {object}  map[string]interface{}
// @Router       /bindings [get]
func (h *Handler) ListBindings(c *gin.Context) {
	storefront := c.Query("storefront")
	if storefront == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "storefront query parameter is required")))
		return
	}

	bindings, err := h.resolver.Resolve(c.Request.Context(), storefront)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if bindings == nil {
		bindings = []Binding{}
	}

	c.JSON(http.StatusOK, bindings)
}

// CreateBinding godoc
// @Summary      Create a tenant binding
// @Tags         bindings
// @Accept       json
// @Produce      json
// @Param        binding  body      CreateBindingRequest  true  "Binding data"
// @Success      201  {object}  Binding
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /bindings [post]
func (h *Handler) CreateBinding(c *gin.Context) {
	var req CreateBindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	binding := &Binding{
		StorefrontID:    h.resolver.Normalize(req.StorefrontID),
		CredentialToken: req.CredentialToken,
		DestinationID:   req.DestinationID,
	}

	if err := h.repo.CreateBinding(c.Request.Context(), binding); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, binding)
}

// GetBinding godoc
// @Summary      Get a tenant binding by ID
// @Tags         bindings
// @Produce      json
// @Param        id   path      string  true  "Binding ID"
// @Success      200  {object}  Binding
// @Failure      404  {object}  map[string]interface{}
// @Router       /bindings/{id} [get]
func (h *Handler) GetBinding(c *gin.Context) {
	binding, err := h.repo.GetBinding(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, binding)
}

// UpdateDestination godoc
// @Summary      Point a tenant binding at a different destination database
// @Tags         bindings
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Binding ID"
// @Param        request  body      UpdateDestinationRequest  true  "New destination"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /bindings/{id}/destination [put]
func (h *Handler) UpdateDestination(c *gin.Context) {
	var req UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	updated, err := h.repo.UpdateDestinationID(c.Request.Context(), c.Param("id"), req.DestinationID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, errors.ToErrorResponse(errors.ErrNotFound))
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true, "destination_id": req.DestinationID})
}

// DeleteBinding godoc
// @Summary      Delete a tenant binding
// @Tags         bindings
// @Param        id   path  string  true  "Binding ID"
// @Success      204
// @Failure      404  {object}  map[string]interface{}
// @Router       /bindings/{id} [delete]
func (h *Handler) DeleteBinding(c *gin.Context) {
	if err := h.repo.DeleteBinding(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
