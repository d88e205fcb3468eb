package webhook

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

// Aggregate computes summary statistics over events. Latencies are the real
// deltas between each event's vendor timestamp and receivedAt (the moment
// the delivery reached us); events without a usable timestamp, or stamped
// after receivedAt by clock skew, contribute no sample. The input slice is
// never mutated.
func Aggregate(events []models.WebhookEvent, receivedAt time.Time) models.EventStatistics {
	summary := models.EventStatistics{
		TotalEvents:  len(events),
		CountsByType: make(map[models.EventType]int),
	}

	samples := make([]float64, 0, len(events))
	errorCount := 0

	for _, event := range events {
		summary.CountsByType[event.Type]++
		if event.Type == models.EventWebhookError {
			errorCount++
		}

		if event.Timestamp.IsZero() || event.Timestamp.After(receivedAt) {
			continue
		}
		samples = append(samples, durationMillis(receivedAt.Sub(event.Timestamp)))
	}

	summary.Latency = latencySummary(samples)
	applyRates(&summary, errorCount, len(events))
	return summary
}

// AggregateStored computes the same summary over persisted events, using each
// document's own ReceivedAt as the receipt time so delivery latency stays
// fixed no matter how long the event has been in storage. Documents missing
// either timestamp, or stamped after their receipt time by clock skew,
// contribute no sample.
func AggregateStored(stored []models.StoredEvent) models.EventStatistics {
	summary := models.EventStatistics{
		TotalEvents:  len(stored),
		CountsByType: make(map[models.EventType]int),
	}

	samples := make([]float64, 0, len(stored))
	errorCount := 0

	for _, doc := range stored {
		summary.CountsByType[doc.Type]++
		if doc.Type == models.EventWebhookError {
			errorCount++
		}

		if doc.Timestamp.IsZero() || doc.ReceivedAt.IsZero() || doc.Timestamp.After(doc.ReceivedAt) {
			continue
		}
		samples = append(samples, durationMillis(doc.ReceivedAt.Sub(doc.Timestamp)))
	}

	summary.Latency = latencySummary(samples)
	applyRates(&summary, errorCount, len(stored))
	return summary
}

func applyRates(summary *models.EventStatistics, errorCount, total int) {
	if total == 0 {
		return
	}
	summary.ErrorRate = float64(errorCount) / float64(total)
	summary.SuccessRate = 1 - summary.ErrorRate
}

func durationMillis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}

func latencySummary(samples []float64) models.LatencySummary {
	summary := models.LatencySummary{SampleCount: len(samples)}
	if len(samples) == 0 {
		return summary
	}

	// stats errors only on empty input, which is excluded above.
	summary.AverageMs, _ = stats.Mean(samples)
	summary.MinMs, _ = stats.Min(samples)
	summary.MaxMs, _ = stats.Max(samples)
	summary.P95Ms, _ = stats.Percentile(samples, 95)
	summary.P99Ms, _ = stats.Percentile(samples, 99)
	return summary
}
