package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

func TestDigestRow(t *testing.T) {
	digest := models.DailyDigest{
		Date:             time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		MessagesReceived: 12,
		StatusUpdates:    30,
		WebhookErrors:    2,
		ErrorRate:        0.0455,
		AvgLatencyMs:     812.5,
		P95LatencyMs:     1940.2,
		CreatedAt:        time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC),
	}

	row := digestRow(digest)

	assert.Equal(t, []interface{}{
		"2025-06-01",
		12,
		30,
		2,
		"0.0455",
		"812.5",
		"1940.2",
		"2025-06-02T01:00:00Z",
	}, row)
}
