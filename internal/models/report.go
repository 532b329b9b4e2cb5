package models

import "time"

// ReportStatus tracks a report job through its lifecycle.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportRunning   ReportStatus = "running"
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

// ReportFormat selects the rendered output.
type ReportFormat string

const (
	ReportCSV ReportFormat = "csv"
	ReportPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportCSV || f == ReportPDF
}

// CollisionReport is the persisted state of an asynchronous report job.
type CollisionReport struct {
	ID           string       `db:"id" json:"id"`
	Status       ReportStatus `db:"status" json:"status"`
	Format       ReportFormat `db:"format" json:"format"`
	RequestedBy  string       `db:"requested_by" json:"requested_by,omitempty"`
	FilePath     string       `db:"file_path" json:"-"`
	IssuesTotal  int          `db:"issues_total" json:"issues_total"`
	ErrorMessage string       `db:"error_message" json:"error,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
