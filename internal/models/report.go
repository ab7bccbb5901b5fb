package models

import "time"

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report flags one user for admin review.
type Report struct {
	ID          string       `json:"id"`
	ReporterID  string       `json:"reporterId"`
	ReportedID  string       `json:"reportedId"`
	Reason      string       `json:"reason"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
}

// RecordID implements store.Record.
func (r Report) RecordID() string { return r.ID }
