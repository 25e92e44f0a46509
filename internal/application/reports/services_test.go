package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/lab-analysis/internal/application"
	dominsights "github.com/pulseboard/lab-analysis/internal/domain/insights"
	domain "github.com/pulseboard/lab-analysis/internal/domain/reports"
	domresults "github.com/pulseboard/lab-analysis/internal/domain/results"
)

const rawText = "Cholesterol 250 mg/dL (ref 125-200)\nHemoglobin 14.1 g/dL (13.0-17.0)\n"

type fakeReportRepo struct {
	reports map[domain.ReportID]*domain.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[domain.ReportID]*domain.Report{}}
}

func (r *fakeReportRepo) Save(_ context.Context, rep *domain.Report) error {
	cp := *rep
	r.reports[rep.ID] = &cp
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, subject string, id domain.ReportID) (*domain.Report, error) {
	rep, ok := r.reports[id]
	if !ok || rep.SubjectID != subject || rep.Deleted {
		return nil, errors.New("report not found")
	}
	cp := *rep
	return &cp, nil
}

func (r *fakeReportRepo) ListBySubject(_ context.Context, subject string, _ int) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, rep := range r.reports {
		if rep.SubjectID == subject && !rep.Deleted {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) UpdateStatus(_ context.Context, _ string, id domain.ReportID, st domain.Status) error {
	rep, ok := r.reports[id]
	if !ok {
		return errors.New("report not found")
	}
	rep.Status = st
	return nil
}

func (r *fakeReportRepo) SoftDelete(_ context.Context, _ string, id domain.ReportID) error {
	rep, ok := r.reports[id]
	if !ok {
		return errors.New("report not found")
	}
	rep.Deleted = true
	return nil
}

type fakeResultRepo struct {
	byReport map[string][]*domresults.Result
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{byReport: map[string][]*domresults.Result{}}
}

func (r *fakeResultRepo) SaveAll(_ context.Context, rs []*domresults.Result) error {
	for _, res := range rs {
		r.byReport[res.ReportID] = append(r.byReport[res.ReportID], res)
	}
	return nil
}

func (r *fakeResultRepo) ListByReport(_ context.Context, reportID string) ([]*domresults.Result, error) {
	return r.byReport[reportID], nil
}

type fakeInsightRepo struct {
	byReport map[string]*dominsights.Insight
	upserts  int
	err      error
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{byReport: map[string]*dominsights.Insight{}}
}

func (r *fakeInsightRepo) Upsert(_ context.Context, in *dominsights.Insight) error {
	if r.err != nil {
		return r.err
	}
	r.upserts++
	r.byReport[in.ReportID] = in
	return nil
}

func (r *fakeInsightRepo) GetByReport(_ context.Context, reportID string) (*dominsights.Insight, error) {
	return r.byReport[reportID], nil
}

type fakeErrorLog struct {
	entries []*domain.ProcessingError
}

func (l *fakeErrorLog) Save(_ context.Context, e *domain.ProcessingError) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeErrorLog) ListByReport(_ context.Context, _ string, id domain.ReportID, _ int) ([]*domain.ProcessingError, error) {
	var out []*domain.ProcessingError
	for _, e := range l.entries {
		if e.ReportID == string(id) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDocStore struct {
	err  error
	puts int
}

func (d *fakeDocStore) Put(_ context.Context, subject, filename string, _ []byte) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.puts++
	return subject + "/" + filename, nil
}

func (d *fakeDocStore) PublicURL(path string) string { return "http://blobs.local/" + path }

type fakeAnalyzer struct {
	response string
	err      error
	calls    int
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	return a.response, nil
}

type fixture struct {
	svc      *Service
	reports  *fakeReportRepo
	results  *fakeResultRepo
	insights *fakeInsightRepo
	errs     *fakeErrorLog
	docs     *fakeDocStore
	ai       *fakeAnalyzer
}

func newFixture() *fixture {
	f := &fixture{
		reports:  newFakeReportRepo(),
		results:  newFakeResultRepo(),
		insights: newFakeInsightRepo(),
		errs:     &fakeErrorLog{},
		docs:     &fakeDocStore{},
		ai:       &fakeAnalyzer{response: "**Insights**\n- Cholesterol is elevated\n**Recommendations**\n- Cut back on saturated fat"},
	}
	f.svc = &Service{
		Repo:      f.reports,
		Results:   f.results,
		Insights:  f.insights,
		Errors:    f.errs,
		Documents: f.docs,
		AI:        f.ai,
		Clock:     application.FixedClock{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Params:    Params{CriticalMultiplier: 0.5, AbnormalPenalty: 20, CriticalPenalty: 40},
	}
	return f
}

func submit(t *testing.T, f *fixture) *domain.Report {
	t.Helper()
	report, err := f.svc.Submit(context.Background(), SubmitReportCommand{
		SubjectID: "subject-1",
		Filename:  "labs.pdf",
		Document:  []byte("%PDF-1.4"),
		Text:      rawText,
	})
	require.NoError(t, err)
	return report
}

func TestSubmitCreatesProcessingReportWithResults(t *testing.T) {
	f := newFixture()
	report := submit(t, f)

	assert.Equal(t, domain.StatusProcessing, report.Status)
	assert.Equal(t, []string{"CBC", "Lipid Panel"}, report.TestTypes)
	assert.Equal(t, 1, f.docs.puts)

	rs, err := f.svc.ResultsFor(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "Cholesterol", rs[0].Biomarker)
	assert.Equal(t, domresults.StatusHigh, rs[0].Status) // classified at ingestion
	assert.Equal(t, domresults.StatusNormal, rs[1].Status)
}

func TestSubmitStorageFailureCreatesNoReport(t *testing.T) {
	f := newFixture()
	f.docs.err = errors.New("bucket unavailable")

	_, err := f.svc.Submit(context.Background(), SubmitReportCommand{
		SubjectID: "subject-1", Filename: "labs.pdf", Text: rawText,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.Empty(t, f.reports.reports, "no partial state may be visible")
}

func TestAnalyzeHappyPath(t *testing.T) {
	f := newFixture()
	report := submit(t, f)

	require.NoError(t, f.svc.Analyze(context.Background(), "subject-1", report.ID))

	got, err := f.svc.Get(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnalyzed, got.Status)

	in, err := f.svc.Insight(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.Equal(t, []string{"Cholesterol is elevated"}, in.Insights)
	assert.Equal(t, []string{"Cut back on saturated fat"}, in.Recommendations)
}

func TestAnalyzeRemoteFailureMovesReportToError(t *testing.T) {
	f := newFixture()
	f.ai.err = errors.New("upstream timeout")
	report := submit(t, f)

	err := f.svc.Analyze(context.Background(), "subject-1", report.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")

	got, err := f.svc.Get(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, got.Status)

	// no insight is ever written on failure
	in, err := f.svc.Insight(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	assert.Nil(t, in)

	// failure recorded in the audit trail with the collaborator's message
	entries, err := f.svc.ErrorsFor(context.Background(), "subject-1", report.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "analyze", entries[0].Phase)
	assert.Contains(t, entries[0].Message, "upstream timeout")
}

func TestAnalyzeUnstructuredResponseStillAnalyzed(t *testing.T) {
	f := newFixture()
	f.ai.response = "Overall this panel looks close to normal with one lipid value above range."
	report := submit(t, f)

	require.NoError(t, f.svc.Analyze(context.Background(), "subject-1", report.ID))

	in, err := f.svc.Insight(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.NotEmpty(t, in.Insights, "parser degradation must still produce insights")

	got, _ := f.svc.Get(context.Background(), "subject-1", report.ID)
	assert.Equal(t, domain.StatusAnalyzed, got.Status)
}

func TestReanalyzeRejectedWhileProcessing(t *testing.T) {
	f := newFixture()
	report := submit(t, f)

	_, err := f.svc.Reanalyze(context.Background(), "subject-1", report.ID)
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)
	assert.Equal(t, 0, f.ai.calls)
}

func TestReanalyzeUpsertsInsightIdempotently(t *testing.T) {
	f := newFixture()
	report := submit(t, f)
	require.NoError(t, f.svc.Analyze(context.Background(), "subject-1", report.ID))

	// explicit retry against an analyzed report with identical inputs
	_, err := f.svc.Reanalyze(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Analyze(context.Background(), "subject-1", report.ID))

	assert.Equal(t, 2, f.insights.upserts)
	assert.Len(t, f.insights.byReport, 1, "upsert must not duplicate the insight row")

	got, _ := f.svc.Get(context.Background(), "subject-1", report.ID)
	assert.Equal(t, domain.StatusAnalyzed, got.Status)
}

func TestAnalyzeInsightPersistFailure(t *testing.T) {
	f := newFixture()
	f.insights.err = errors.New("duplicate key")
	report := submit(t, f)

	err := f.svc.Analyze(context.Background(), "subject-1", report.ID)
	require.Error(t, err)

	got, _ := f.svc.Get(context.Background(), "subject-1", report.ID)
	assert.Equal(t, domain.StatusError, got.Status)

	entries, _ := f.svc.ErrorsFor(context.Background(), "subject-1", report.ID, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "persist", entries[0].Phase)
}

func TestScoreAndCompareThroughService(t *testing.T) {
	f := newFixture()
	first := submit(t, f)

	// second report, later in time, same biomarkers but now in range
	f.svc.Clock = application.FixedClock{T: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	second, err := f.svc.Submit(context.Background(), SubmitReportCommand{
		SubjectID: "subject-1",
		Filename:  "labs-2.pdf",
		Text:      "Cholesterol 180 mg/dL (ref 125-200)\nHemoglobin 14.0 g/dL (13.0-17.0)\n",
	})
	require.NoError(t, err)

	score, err := f.svc.Score(context.Background(), "subject-1", second.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	cmp, err := f.svc.Compare(context.Background(), "subject-1", first.ID, second.ID)
	require.NoError(t, err)
	require.Len(t, cmp.Improved, 1)
	assert.Equal(t, "Cholesterol", cmp.Improved[0].Biomarker)
	require.Len(t, cmp.Unchanged, 1)

	// passing the ids in reverse orders the pair by upload time first
	cmpRev, err := f.svc.Compare(context.Background(), "subject-1", second.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, cmp, cmpRev)
}

func TestLipidUploadEndToEnd(t *testing.T) {
	f := newFixture()
	f.ai.response = "The cholesterol value sits above its reference range and is worth discussing with a clinician at the next visit."

	report, err := f.svc.Submit(context.Background(), SubmitReportCommand{
		SubjectID: "subject-1",
		Filename:  "lipids.pdf",
		Text:      "Cholesterol 250 mg/dL (ref 125-200)",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lipid Panel"}, report.TestTypes)

	rs, err := f.svc.ResultsFor(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, domresults.StatusHigh, rs[0].Status)

	require.NoError(t, f.svc.Analyze(context.Background(), "subject-1", report.ID))

	in, err := f.svc.Insight(context.Background(), "subject-1", report.ID)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.NotEmpty(t, in.Insights)

	got, _ := f.svc.Get(context.Background(), "subject-1", report.ID)
	assert.Equal(t, domain.StatusAnalyzed, got.Status)
}

func TestScoreNoResults(t *testing.T) {
	f := newFixture()
	report, err := f.svc.Submit(context.Background(), SubmitReportCommand{
		SubjectID: "subject-1",
		Filename:  "narrative-only.pdf",
		Text:      "Physician narrative with no measurements recorded in this document.",
	})
	require.NoError(t, err)

	score, err := f.svc.Score(context.Background(), "subject-1", report.ID)
	assert.Equal(t, 0, score)
	assert.ErrorIs(t, err, domresults.ErrNoResults)
}
