package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
	service "github.com/Alx-707/whatsapp-webhook-pipeline/internal/service/events"
)

const signatureHeader = "X-Hub-Signature-256"

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// WebhookHandler handles inbound WhatsApp webhook HTTP traffic and the event
// query API.
type WebhookHandler struct {
	svc    service.IngestService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.IngestService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	resp, err := h.svc.VerifyWebhookToken(mode, token, challenge)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive ingests webhook POST callbacks from Meta. Partial parse failures
// still return 200 so the vendor does not redeliver a payload we already
// processed as far as possible.
func (h *WebhookHandler) Receive(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("failed reading webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	result, err := h.svc.HandleWebhook(c.Request.Context(), rawBody, c.GetHeader(signatureHeader))
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			h.logger.Warn("webhook signature mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.As(err, &validationErr):
			h.logger.Warn("invalid webhook payload", zap.Strings("errors", validationErr.Result.Errors))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid payload",
				"details": validationErr.Result.Errors,
			})
		default:
			h.logger.Error("failed processing webhook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListEvents serves the stored-event query API.
func (h *WebhookHandler) ListEvents(c *gin.Context) {
	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.Warn("invalid event query", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	limit := int64(defaultQueryLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		// The repository treats a zero limit as unbounded, so zero is
		// rejected here along with negatives.
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if parsed > maxQueryLimit {
			parsed = maxQueryLimit
		}
		limit = parsed
	}

	events, err := h.svc.QueryEvents(c.Request.Context(), filter, limit)
	if err != nil {
		h.logger.Error("failed querying events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
}

// Stats serves aggregate statistics over the stored events.
func (h *WebhookHandler) Stats(c *gin.Context) {
	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.Warn("invalid stats query", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	summary, err := h.svc.Statistics(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed computing statistics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
