package results

// Status enum untuk hasil biomarker
type Status string

const (
	StatusNormal   Status = "normal"
	StatusLow      Status = "low"
	StatusHigh     Status = "high"
	StatusCritical Status = "critical"
)

// Result is one classified biomarker measurement belonging to a report.
// Status is derived once at ingestion and never recomputed; rows are
// immutable after persistence (corrections require a new report).
type Result struct {
	ID             string `json:"id"`
	ReportID       string `json:"report_id"`
	Biomarker      string `json:"biomarker"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Status         Status `json:"status"`
	Category       string `json:"category,omitempty"`
}

// severity ordinal used by the comparator; low and high share one tier
var statusOrdinal = map[Status]int{
	StatusNormal:   0,
	StatusLow:      1,
	StatusHigh:     1,
	StatusCritical: 2,
}
