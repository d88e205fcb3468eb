package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/config"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

const (
	dateLayout = "2006-01-02"

	// digestRange covers the eight digest columns: date, message count,
	// status count, error count, error rate, avg latency, p95 latency,
	// created-at.
	digestRange = "Digest!A:H"
)

// Repository defines the spreadsheet operations the digest export uses.
type Repository interface {
	AppendDigestRow(ctx context.Context, digest models.DailyDigest) error
	ListExportedDates(ctx context.Context) ([]string, error)
}

// GoogleSheetRepository exports daily digests to a Google spreadsheet the
// ops team reads.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed export instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendDigestRow appends one digest as a row to the export sheet.
func (r *GoogleSheetRepository) AppendDigestRow(ctx context.Context, digest models.DailyDigest) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{digestRow(digest)}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, digestRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append digest row for %s: %w", digest.Date.Format(dateLayout), err)
	}

	r.logger.Debug("digest row appended to sheet", zap.String("date", digest.Date.Format(dateLayout)))
	return nil
}

// ListExportedDates returns the date column of the export sheet, one entry
// per already exported digest, so a rerun can skip days it already wrote.
func (r *GoogleSheetRepository) ListExportedDates(ctx context.Context) ([]string, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, digestRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read digest sheet: %w", err)
	}

	dates := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if date, ok := row[0].(string); ok && date != "" {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

func digestRow(digest models.DailyDigest) []interface{} {
	return []interface{}{
		digest.Date.Format(dateLayout),
		digest.MessagesReceived,
		digest.StatusUpdates,
		digest.WebhookErrors,
		fmt.Sprintf("%.4f", digest.ErrorRate),
		fmt.Sprintf("%.1f", digest.AvgLatencyMs),
		fmt.Sprintf("%.1f", digest.P95LatencyMs),
		digest.CreatedAt.Format(time.RFC3339),
	}
}
