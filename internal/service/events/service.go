package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/config"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/repository/mongodb"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/webhook"
	"github.com/Alx-707/whatsapp-webhook-pipeline/pkg/clients/forward"
	"github.com/Alx-707/whatsapp-webhook-pipeline/pkg/metrics"
)

// ErrInvalidSignature indicates the delivery failed HMAC verification. The
// HTTP layer maps it to 401; the pipeline itself never rejects a request.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ValidationError carries the structural check outcome for a rejected body.
type ValidationError struct {
	Result webhook.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid webhook payload: %s", strings.Join(e.Result.Errors, "; "))
}

// IngestService describes the operations the HTTP layer can perform.
type IngestService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (webhook.ParseResult, error)
	QueryEvents(ctx context.Context, filter models.EventFilter, limit int64) ([]models.WebhookEvent, error)
	Statistics(ctx context.Context, filter models.EventFilter) (models.EventStatistics, error)
}

// Service is the production implementation wiring the pipeline to storage
// and the downstream forwarder.
type Service struct {
	cfg       config.WhatsAppConfig
	verifier  *webhook.Verifier
	parser    *webhook.Parser
	repo      mongodb.Repository
	forwarder forward.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new service instance. An empty app secret disables
// signature enforcement; a nil forwarder disables downstream delivery.
func NewService(cfg config.WhatsAppConfig, repo mongodb.Repository, forwarder forward.Client, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := &Service{
		cfg:       cfg,
		parser:    webhook.NewParser(),
		repo:      repo,
		forwarder: forwarder,
		logger:    logger,
		now:       time.Now,
	}

	if cfg.AppSecret != "" {
		verifier, err := webhook.NewVerifier(cfg.AppSecret, webhook.AlgorithmSHA256)
		if err != nil {
			return nil, fmt.Errorf("build signature verifier: %w", err)
		}
		svc.verifier = verifier
	}

	return svc, nil
}

// VerifyWebhookToken validates Meta's callback verification handshake.
func (s *Service) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook runs one delivery through the pipeline: signature check,
// structural validation, parse, persist, forward. Forwarding is best-effort;
// a downstream failure never fails the ingest.
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (webhook.ParseResult, error) {
	if s.verifier != nil && !s.verifier.Verify(rawBody, signatureHeader) {
		metrics.WebhooksReceivedTotal.WithLabelValues("rejected_signature").Inc()
		return webhook.ParseResult{}, ErrInvalidSignature
	}

	var decoded any
	_ = json.Unmarshal(rawBody, &decoded)

	validation := webhook.Validate(decoded)
	if !validation.Valid {
		metrics.WebhooksReceivedTotal.WithLabelValues("rejected_payload").Inc()
		return webhook.ParseResult{}, &ValidationError{Result: validation}
	}
	for _, warning := range validation.Warnings {
		s.logger.Warn("webhook payload warning", zap.String("warning", warning))
	}

	receivedAt := s.now()
	result := s.parser.ParseJSON(rawBody)

	status := "ok"
	if !result.Success {
		status = "partial"
		if result.Metadata.ParsedEntries == 0 {
			status = "failed"
		}
	}
	metrics.WebhooksReceivedTotal.WithLabelValues(status).Inc()
	metrics.ObserveParseDuration(time.Duration(result.Metadata.DurationMillis*float64(time.Millisecond)), status)
	for _, event := range result.Events {
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type)).Inc()
	}

	for _, entryErr := range result.Errors {
		s.logger.Warn("webhook entry failed to parse",
			zap.String("entry_id", entryErr.EntryID),
			zap.String("reason", entryErr.Reason))
	}

	batchID := uuid.NewString()
	stored := make([]models.StoredEvent, 0, len(result.Events))
	for _, event := range result.Events {
		stored = append(stored, models.NewStoredEvent(batchID, event, receivedAt))
	}

	if err := s.repo.SaveEvents(ctx, stored); err != nil {
		return result, fmt.Errorf("persist events: %w", err)
	}

	if s.forwarder != nil && len(result.Events) > 0 {
		batch := forward.EventBatch{
			BatchID:    batchID,
			ReceivedAt: receivedAt,
			Events:     result.Events,
		}
		if err := s.forwarder.ForwardEvents(ctx, batch); err != nil {
			metrics.ForwardRequestsTotal.WithLabelValues("error").Inc()
			s.logger.Error("failed forwarding event batch", zap.Error(err), zap.String("batch_id", batchID))
		} else {
			metrics.ForwardRequestsTotal.WithLabelValues("ok").Inc()
		}
	}

	s.logger.Info("webhook processed",
		zap.String("batch_id", batchID),
		zap.Int("events", result.Metadata.TotalEvents),
		zap.Int("failed_entries", len(result.Errors)))

	return result, nil
}

// QueryEvents loads stored events and applies the full in-memory filter on
// top of what the repository query narrowed down.
func (s *Service) QueryEvents(ctx context.Context, filter models.EventFilter, limit int64) ([]models.WebhookEvent, error) {
	stored, err := s.repo.ListEvents(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]models.WebhookEvent, 0, len(stored))
	for _, doc := range stored {
		events = append(events, doc.Event())
	}

	return webhook.Filter(events, filter), nil
}

// Statistics aggregates the filtered event set. It works on the stored
// documents directly so each latency sample uses the ReceivedAt recorded at
// ingest time rather than whenever the query happens to run.
func (s *Service) Statistics(ctx context.Context, filter models.EventFilter) (models.EventStatistics, error) {
	stored, err := s.repo.ListEvents(ctx, filter, 0)
	if err != nil {
		return models.EventStatistics{}, fmt.Errorf("list events: %w", err)
	}
	return webhook.AggregateStored(webhook.FilterStored(stored, filter)), nil
}
