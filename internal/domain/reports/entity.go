package reports

import (
	"errors"
	"time"
)

// ID tipe untuk Report
type ReportID string

// Status enum
type Status string

const (
	StatusProcessing Status = "processing"
	StatusAnalyzed   Status = "analyzed"
	StatusError      Status = "error"
)

// ErrAnalysisInProgress is returned when a second analysis is requested
// while the report is still in processing status.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

// Aggregate Root: Report, one uploaded lab document.
// Status moves processing→analyzed or processing→error and is terminal
// after that; only the application service mutates it.
type Report struct {
	ID          ReportID  `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	TestTypes   []string  `json:"test_types"`
	RawText     string    `json:"-"`
	Status      Status    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Deleted     bool      `json:"-"`
}

// ProcessingError is a persisted record of why a report entered error status
type ProcessingError struct {
	ID        int64     `json:"id"`
	SubjectID string    `json:"subject_id"`
	ReportID  string    `json:"report_id"`
	Phase     string    `json:"phase,omitempty"` // submit | analyze | persist
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
