package models

import "time"

// DailyDigest represents the aggregated daily traffic summary stored in
// MongoDB and exported to the ops spreadsheet.
type DailyDigest struct {
	Date             time.Time `bson:"date" json:"date"`
	MessagesReceived int       `bson:"messages_received" json:"messages_received"`
	StatusUpdates    int       `bson:"status_updates" json:"status_updates"`
	WebhookErrors    int       `bson:"webhook_errors" json:"webhook_errors"`
	ErrorRate        float64   `bson:"error_rate" json:"error_rate"`
	AvgLatencyMs     float64   `bson:"avg_latency_ms" json:"avg_latency_ms"`
	P95LatencyMs     float64   `bson:"p95_latency_ms" json:"p95_latency_ms"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
