package digest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/repository/mongodb"
	repo "github.com/Alx-707/whatsapp-webhook-pipeline/internal/repository/sheets"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/webhook"
)

const dateLayout = "2006-01-02"

// Service produces daily traffic digests from stored events and exports them
// for the ops team.
type Service struct {
	events mongodb.Repository
	sheets repo.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new digest service instance. A nil sheets repository
// disables the spreadsheet export.
func NewService(events mongodb.Repository, sheetsRepo repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		events: events,
		sheets: sheetsRepo,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateDailyDigest aggregates the events of the calendar day containing
// day, persists the digest and appends it to the export sheet.
func (s *Service) GenerateDailyDigest(ctx context.Context, day time.Time) (models.DailyDigest, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	filter := models.EventFilter{After: &start, Before: &end}
	stored, err := s.events.ListEvents(ctx, filter, 0)
	if err != nil {
		return models.DailyDigest{}, fmt.Errorf("load events for %s: %w", start.Format(dateLayout), err)
	}

	// Aggregating the stored documents keeps each latency sample anchored
	// to the ReceivedAt recorded at ingest, not the end of the day.
	summary := webhook.AggregateStored(stored)

	entry := models.DailyDigest{
		Date:             start,
		MessagesReceived: summary.CountsByType[models.EventMessageReceived],
		StatusUpdates:    summary.CountsByType[models.EventMessageStatus],
		WebhookErrors:    summary.CountsByType[models.EventWebhookError],
		ErrorRate:        summary.ErrorRate,
		AvgLatencyMs:     summary.Latency.AverageMs,
		P95LatencyMs:     summary.Latency.P95Ms,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.events.SaveDailyDigest(ctx, entry); err != nil {
		return models.DailyDigest{}, fmt.Errorf("save digest for %s: %w", start.Format(dateLayout), err)
	}

	if s.sheets != nil {
		if err := s.exportDigest(ctx, entry); err != nil {
			// The stored digest is the source of truth; a failed export only warns.
			s.logger.Warn("failed exporting digest to sheet", zap.Error(err))
		}
	}

	s.logger.Info("daily digest generated",
		zap.String("date", start.Format(dateLayout)),
		zap.Int("messages", entry.MessagesReceived),
		zap.Int("statuses", entry.StatusUpdates),
		zap.Int("errors", entry.WebhookErrors))

	return entry, nil
}

// exportDigest appends the digest to the sheet unless a row for that date is
// already there, so a rerun of the job does not duplicate days.
func (s *Service) exportDigest(ctx context.Context, entry models.DailyDigest) error {
	exported, err := s.sheets.ListExportedDates(ctx)
	if err != nil {
		return fmt.Errorf("load exported dates: %w", err)
	}

	date := entry.Date.Format(dateLayout)
	for _, d := range exported {
		if d == date {
			s.logger.Info("digest already exported, skipping", zap.String("date", date))
			return nil
		}
	}

	return s.sheets.AppendDigestRow(ctx, entry)
}
