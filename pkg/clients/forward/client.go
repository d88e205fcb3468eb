package forward

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/config"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

// Client delivers parsed event batches to the downstream consumer.
type Client interface {
	ForwardEvents(ctx context.Context, batch EventBatch) error
}

// EventBatch is the payload POSTed downstream for each accepted delivery.
type EventBatch struct {
	BatchID    string                `json:"batch_id"`
	ReceivedAt time.Time             `json:"received_at"`
	Events     []models.WebhookEvent `json:"events"`
}

// HTTPClient is a resty-backed implementation of Client.
type HTTPClient struct {
	httpClient *resty.Client
}

// NewClient builds a forwarding client from the provided configuration values.
func NewClient(cfg config.ForwardConfig) *HTTPClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.URL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &HTTPClient{httpClient: restyClient}
}

// apiError represents the downstream consumer's error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ForwardEvents POSTs the batch. Empty batches are skipped.
func (c *HTTPClient) ForwardEvents(ctx context.Context, batch EventBatch) error {
	if len(batch.Events) == 0 {
		return nil
	}

	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(batch).
		SetError(apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("forward event batch: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return fmt.Errorf("downstream error: code=%d, message=%s", code, message)
	}

	return nil
}
