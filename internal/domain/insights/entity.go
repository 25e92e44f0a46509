package insights

import "time"

// ID tipe untuk Insight
type InsightID string

// Insight is the narrative interpretation of one report. At most one per
// report; writes are last-write-wins upserts keyed by report id.
type Insight struct {
	ID              InsightID `json:"id"`
	ReportID        string    `json:"report_id"`
	Insights        []string  `json:"insights"`
	Recommendations []string  `json:"recommendations"`
	Warnings        []string  `json:"warnings"`
	FollowUps       []string  `json:"follow_ups"`
	CreatedAt       time.Time `json:"created_at"`
}
