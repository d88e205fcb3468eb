package models

// LatencySummary describes the distribution of delivery latencies in
// milliseconds, measured between the vendor timestamp on each event and the
// moment the webhook reached us.
type LatencySummary struct {
	SampleCount int     `json:"sample_count"`
	AverageMs   float64 `json:"average_ms"`
	MinMs       float64 `json:"min_ms"`
	MaxMs       float64 `json:"max_ms"`
	P95Ms       float64 `json:"p95_ms"`
	P99Ms       float64 `json:"p99_ms"`
}

// EventStatistics is the aggregate summary over a slice of events, computed
// once per aggregation call.
type EventStatistics struct {
	TotalEvents  int               `json:"total_events"`
	CountsByType map[EventType]int `json:"counts_by_type"`
	Latency      LatencySummary    `json:"latency"`
	ErrorRate    float64           `json:"error_rate"`
	SuccessRate  float64           `json:"success_rate"`
}
