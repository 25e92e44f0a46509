package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/lab-analysis/internal/application"
	"github.com/pulseboard/lab-analysis/internal/domain/ai"
	dominsights "github.com/pulseboard/lab-analysis/internal/domain/insights"
	domain "github.com/pulseboard/lab-analysis/internal/domain/reports"
	domresults "github.com/pulseboard/lab-analysis/internal/domain/results"
)

// Params are the analysis tuning knobs, threaded in from config.
type Params struct {
	CriticalMultiplier float64
	AbnormalPenalty    float64
	CriticalPenalty    float64
	AnalyzeTimeout     time.Duration
}

// Service implements use-cases untuk the report pipeline.
// Safe for concurrent use; reports for different subjects are independent,
// and a report's own status field gates re-entry per report.
type Service struct {
	Repo      domain.Repository
	Results   domresults.Repository
	Insights  dominsights.Repository
	Errors    domain.ErrorLog
	Documents domain.DocumentStore
	AI        ai.Client
	Clock     application.Clock
	Params    Params
}

//
// ==== USE CASES ====
//

// Command untuk submit report
type SubmitReportCommand struct {
	SubjectID string
	Filename  string
	Document  []byte
	Text      string // plain text already extracted upstream
}

// Submit stores the raw document, creates the report row in processing
// status, detects test types and ingests classified results. A document
// store failure aborts before any report row exists. The remote analysis
// stage is not run here; callers kick it off with AnalyzeUntilDone.
func (s *Service) Submit(ctx context.Context, cmd SubmitReportCommand) (*domain.Report, error) {
	now := s.Clock.Now()
	id := uuid.New().String()

	path, err := s.Documents.Put(ctx, cmd.SubjectID, fmt.Sprintf("%s-%s", id, cmd.Filename), cmd.Document)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	report := &domain.Report{
		ID:          domain.ReportID(id),
		SubjectID:   cmd.SubjectID,
		Filename:    cmd.Filename,
		StoragePath: path,
		TestTypes:   domain.DetectTestTypes(cmd.Text),
		RawText:     cmd.Text,
		Status:      domain.StatusProcessing,
		UploadedAt:  now,
	}
	if err := s.Repo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	rs := domresults.Extract(cmd.Text, s.Params.CriticalMultiplier)
	for _, r := range rs {
		r.ID = uuid.New().String()
		r.ReportID = id
	}
	if len(rs) > 0 {
		if err := s.Results.SaveAll(ctx, rs); err != nil {
			s.fail(cmd.SubjectID, report.ID, "persist", err)
			return report, fmt.Errorf("save results: %w", err)
		}
	}

	return report, nil
}

// Analyze runs the remote text-generation stage for a submitted report,
// parses the narrative and upserts the insight, then moves the report to
// analyzed. Any failure moves it to error and records an audit entry;
// nothing here retries on its own.
func (s *Service) Analyze(ctx context.Context, subject string, id domain.ReportID) error {
	report, err := s.Repo.Get(ctx, subject, id)
	if err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, s.analyzeTimeout())
	defer cancel()

	raw, err := s.AI.Analyze(ctx2, report.RawText)
	if err != nil {
		s.fail(subject, id, "analyze", err)
		return fmt.Errorf("remote analysis: %w", err)
	}

	narrative := dominsights.Parse(raw)
	insight := &dominsights.Insight{
		ID:              dominsights.InsightID(uuid.New().String()),
		ReportID:        string(id),
		Insights:        narrative.Insights,
		Recommendations: narrative.Recommendations,
		Warnings:        narrative.Warnings,
		FollowUps:       narrative.FollowUps,
		CreatedAt:       s.Clock.Now(),
	}
	if err := s.Insights.Upsert(ctx, insight); err != nil {
		s.fail(subject, id, "persist", err)
		return fmt.Errorf("save insight: %w", err)
	}

	return s.Repo.UpdateStatus(ctx, subject, id, domain.StatusAnalyzed)
}

// AnalyzeUntilDone → jalanin analysis dengan context.Background()
// cocok dipanggil dari goroutine di router supaya gak kena context canceled
func (s *Service) AnalyzeUntilDone(subject string, id domain.ReportID) error {
	return s.Analyze(context.Background(), subject, id)
}

// Reanalyze marks an analyzed or errored report as processing again for an
// explicit user-triggered re-run. A report still in processing is rejected,
// never run in parallel: the insight upsert is not designed to merge
// concurrent writes.
func (s *Service) Reanalyze(ctx context.Context, subject string, id domain.ReportID) (*domain.Report, error) {
	report, err := s.Repo.Get(ctx, subject, id)
	if err != nil {
		return nil, err
	}
	if report.Status == domain.StatusProcessing {
		return nil, domain.ErrAnalysisInProgress
	}
	if err := s.Repo.UpdateStatus(ctx, subject, id, domain.StatusProcessing); err != nil {
		return nil, err
	}
	report.Status = domain.StatusProcessing
	return report, nil
}

// Score computes the health score on demand from persisted, already
// classified results. ErrNoResults comes back as (0, err); callers decide
// how to present the empty case.
func (s *Service) Score(ctx context.Context, subject string, id domain.ReportID) (int, error) {
	if _, err := s.Repo.Get(ctx, subject, id); err != nil {
		return 0, err
	}
	rs, err := s.Results.ListByReport(ctx, string(id))
	if err != nil {
		return 0, err
	}
	return domresults.Score(rs, domresults.Penalties{
		Abnormal: s.Params.AbnormalPenalty,
		Critical: s.Params.CriticalPenalty,
	})
}

// Compare diffs two of the subject's reports. The pair is ordered by
// upload time before diffing, so callers may pass the ids either way.
func (s *Service) Compare(ctx context.Context, subject string, fromID, toID domain.ReportID) (domresults.Comparison, error) {
	older, err := s.Repo.Get(ctx, subject, fromID)
	if err != nil {
		return domresults.Comparison{}, err
	}
	newer, err := s.Repo.Get(ctx, subject, toID)
	if err != nil {
		return domresults.Comparison{}, err
	}
	if newer.UploadedAt.Before(older.UploadedAt) {
		older, newer = newer, older
	}

	olderResults, err := s.Results.ListByReport(ctx, string(older.ID))
	if err != nil {
		return domresults.Comparison{}, err
	}
	newerResults, err := s.Results.ListByReport(ctx, string(newer.ID))
	if err != nil {
		return domresults.Comparison{}, err
	}
	return domresults.Compare(olderResults, newerResults), nil
}

// Get ambil 1 report by id
func (s *Service) Get(ctx context.Context, subject string, id domain.ReportID) (*domain.Report, error) {
	return s.Repo.Get(ctx, subject, id)
}

// List ambil N report terakhir (not deleted, newest first)
func (s *Service) List(ctx context.Context, subject string, limit int) ([]*domain.Report, error) {
	return s.Repo.ListBySubject(ctx, subject, limit)
}

// Delete soft-deletes a report; rows are never physically removed.
func (s *Service) Delete(ctx context.Context, subject string, id domain.ReportID) error {
	return s.Repo.SoftDelete(ctx, subject, id)
}

// Insight returns the report's narrative, or nil when none exists yet —
// a valid, displayable state for an analyzed report.
func (s *Service) Insight(ctx context.Context, subject string, id domain.ReportID) (*dominsights.Insight, error) {
	if _, err := s.Repo.Get(ctx, subject, id); err != nil {
		return nil, err
	}
	return s.Insights.GetByReport(ctx, string(id))
}

// ResultsFor lists the report's classified results.
func (s *Service) ResultsFor(ctx context.Context, subject string, id domain.ReportID) ([]*domresults.Result, error) {
	if _, err := s.Repo.Get(ctx, subject, id); err != nil {
		return nil, err
	}
	return s.Results.ListByReport(ctx, string(id))
}

// ErrorsFor lists the report's processing-error audit trail.
func (s *Service) ErrorsFor(ctx context.Context, subject string, id domain.ReportID, limit int) ([]*domain.ProcessingError, error) {
	return s.Errors.ListByReport(ctx, subject, id, limit)
}

// fail moves the report to terminal error status and records why. Uses
// context.Background() so the failure path survives a canceled request.
func (s *Service) fail(subject string, id domain.ReportID, phase string, cause error) {
	_ = s.Repo.UpdateStatus(context.Background(), subject, id, domain.StatusError)
	_ = s.Errors.Save(context.Background(), &domain.ProcessingError{
		SubjectID: subject,
		ReportID:  string(id),
		Phase:     phase,
		Message:   cause.Error(),
		CreatedAt: s.Clock.Now(),
	})
}

func (s *Service) analyzeTimeout() time.Duration {
	if s.Params.AnalyzeTimeout <= 0 {
		return 60 * time.Second
	}
	return s.Params.AnalyzeTimeout
}
