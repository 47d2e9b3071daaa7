package sync

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"shopsync/internal/constants"
	"shopsync/internal/logger"
	"shopsync/internal/schema"
	"shopsync/internal/signature"
	"shopsync/pkg/errors"
	"shopsync/pkg/logging"
	"shopsync/pkg/metrics"
)

type Handler struct {
	service      Service
	introspector *schema.Introspector
	clientSecret string
	logger       logger.Logger
}

func NewHandler(service Service, introspector *schema.Introspector, clientSecret string, log logger.Logger) *Handler {
	return &Handler{
		service:      service,
		introspector: introspector,
		clientSecret: clientSecret,
		logger:       log,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/webhooks/orders", h.HandleOrderWebhook)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/verify-callback", h.VerifyCallback)
		v1.DELETE("/schemas/:destinationId", h.InvalidateSchema)
	}
}

// HandleOrderWebhook godoc
// @Summary      Ingest a storefront order webhook
// @Description  Verifies the delivery signature, then syncs the order to every bound tenant workspace
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  Result
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /webhooks/orders [post]
func (h *Handler) HandleOrderWebhook(c *gin.Context) {
	start := time.Now()

	// The signature covers the raw bytes, so the body must be captured
	// before any JSON decoding touches it.
	body, err := c.GetRawData()
	if err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("read_error").Inc()
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrMalformedPayload.WithCause(err)))
		return
	}

	event := InboundEvent{
		Body:         body,
		Signature:    c.GetHeader(constants.HeaderWebhookSignature),
		StorefrontID: c.GetHeader(constants.HeaderShopDomain),
		Topic:        c.GetHeader(constants.HeaderWebhookTopic),
	}

	ctx := c.Request.Context()
	if event.StorefrontID != "" {
		ctx = logging.WithStorefrontID(ctx, event.StorefrontID)
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		ctx = logging.WithDeliveryID(ctx, requestID)
	}

	result, err := h.service.ProcessEvent(ctx, event)
	if err != nil {
		status := errors.ToHTTPStatus(err)
		metrics.WebhookDeliveriesTotal.WithLabelValues(deliveryStatus(status)).Inc()
		metrics.ObserveWebhookDuration(time.Since(start), deliveryStatus(status))

		h.logger.WarnwCtx(ctx, "Webhook delivery rejected",
			"storefront", event.StorefrontID,
			"status", status,
			"error", err,
		)
		c.JSON(status, errors.ToErrorResponse(err))
		return
	}

	metrics.WebhookDeliveriesTotal.WithLabelValues("ok").Inc()
	metrics.ObserveWebhookDuration(time.Since(start), "ok")

	c.JSON(http.StatusOK, result)
}

// Query carries each parameter's full value list, since callback URLs
// may repeat a key and every occurrence is part of the signed message.
type verifyCallbackRequest struct {
	Query       map[string][]string `json:"query" binding:"required"`
	DigestParam string              `json:"digest_param"`
}

// VerifyCallback godoc
// @Summary      Verify an OAuth callback authenticity digest
// @Description  Checks the hex HMAC over the sorted query string, as sent on platform redirect callbacks
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /verify-callback [post]
func (h *Handler) VerifyCallback(c *gin.Context) {
	var req verifyCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	if h.clientSecret == "" {
		c.JSON(http.StatusInternalServerError, errors.ToErrorResponse(
			errors.ErrConfigMissing.WithDetail("message", "client secret is not configured")))
		return
	}

	digestParam := req.DigestParam
	if digestParam == "" {
		digestParam = "hmac"
	}

	if !signature.VerifyCallback(url.Values(req.Query), digestParam, h.clientSecret) {
		c.JSON(http.StatusUnauthorized, errors.ToErrorResponse(errors.ErrUnauthorized))
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// InvalidateSchema godoc
// @Summary      Drop the cached schema for a destination
// @Description  Forces re-introspection on the next event touching the destination
// @Tags         schemas
// @Param        destinationId  path  string  true  "Destination database ID"
// @Success      204
// @Router       /schemas/{destinationId} [delete]
func (h *Handler) InvalidateSchema(c *gin.Context) {
	h.introspector.Invalidate(c.Request.Context(), c.Param("destinationId"))
	c.Status(http.StatusNoContent)
}

func deliveryStatus(httpStatus int) string {
	switch httpStatus {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusBadRequest:
		return "malformed"
	case http.StatusInternalServerError:
		return "config_error"
	default:
		return "error"
	}
}
