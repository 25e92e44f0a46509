package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appreports "github.com/pulseboard/lab-analysis/internal/application/reports"
	domai "github.com/pulseboard/lab-analysis/internal/domain/ai"
	domain "github.com/pulseboard/lab-analysis/internal/domain/reports"
	domresults "github.com/pulseboard/lab-analysis/internal/domain/results"
)

const maxUploadBytes = 32 << 20

type Router struct {
	svc *appreports.Service
}

func NewRouter(svc *appreports.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Route("/v1/subjects/{subject}", func(rt chi.Router) {
		rt.Post("/reports", r.wrap(r.handleUpload))
		rt.Get("/reports", r.wrap(r.handleList))
		rt.Get("/reports/{id}", r.wrap(r.handleGet))
		rt.Delete("/reports/{id}", r.wrap(r.handleDelete))
		rt.Post("/reports/{id}/reanalyze", r.wrap(r.handleReanalyze))
		rt.Get("/reports/{id}/insight", r.wrap(r.handleInsight))
		rt.Get("/reports/{id}/score", r.wrap(r.handleScore))
		rt.Get("/reports/{id}/errors", r.wrap(r.handleErrors))
		rt.Get("/comparison", r.wrap(r.handleComparison))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrAnalysisInProgress):
				http.Error(w, "analysis already in progress", http.StatusConflict)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/subjects/{subject}/reports
// Multipart form: "document" (raw file) + "text" (extracted plain text).
// The pipeline runs in the background; the response carries the report id
// for polling.
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")

	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return fmt.Errorf("parse multipart form: %w", err)
	}
	file, header, err := req.FormFile("document")
	if err != nil {
		return fmt.Errorf("document file is required")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	cmd := appreports.SubmitReportCommand{
		SubjectID: subject,
		Filename:  header.Filename,
		Document:  data,
		Text:      req.FormValue("text"),
	}

	report, err := r.svc.Submit(req.Context(), cmd)
	if err != nil {
		return err
	}

	// 🚀 Jalankan di background, biar jalan sampai selesai
	go func() {
		if err := r.svc.AnalyzeUntilDone(subject, report.ID); err != nil {
			log.Printf("background analysis error subject=%s report=%s: %v", subject, report.ID, err)
			return
		}
		log.Printf("analysis finished subject=%s report=%s", subject, report.ID)
	}()

	// 🔙 langsung balikin respons ke client
	resp := map[string]any{
		"id":         report.ID,
		"subject":    subject,
		"status":     report.Status,
		"test_types": report.TestTypes,
		"message":    "analysis started in background",
		"queuedAt":   time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(resp)
}

// POST /v1/subjects/{subject}/reports/{id}/reanalyze
func (r *Router) handleReanalyze(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	id := domain.ReportID(chi.URLParam(req, "id"))

	report, err := r.svc.Reanalyze(req.Context(), subject, id)
	if err != nil {
		return err
	}

	go func() {
		if err := r.svc.AnalyzeUntilDone(subject, id); err != nil {
			log.Printf("background reanalysis error subject=%s report=%s: %v", subject, id, err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(report)
}

// GET /v1/subjects/{subject}/reports?limit=20
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.List(req.Context(), subject, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/subjects/{subject}/reports/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	id := domain.ReportID(chi.URLParam(req, "id"))

	report, err := r.svc.Get(req.Context(), subject, id)
	if err != nil {
		return err
	}
	results, err := r.svc.ResultsFor(req.Context(), subject, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"report":  report,
		"results": results,
	})
}

// DELETE /v1/subjects/{subject}/reports/{id} — soft delete only
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	id := domain.ReportID(chi.URLParam(req, "id"))

	if err := r.svc.Delete(req.Context(), subject, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/subjects/{subject}/reports/{id}/insight
func (r *Router) handleInsight(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	id := domain.ReportID(chi.URLParam(req, "id"))

	insight, err := r.svc.Insight(req.Context(), subject, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	if insight == nil {
		// valid state for an analyzed report
		return json.NewEncoder(w).Encode(map[string]any{
			"insight": nil,
			"message": "no insights available",
		})
	}
	return json.NewEncoder(w).Encode(insight)
}

// GET /v1/subjects/{subject}/reports/{id}/score
func (r *Router) handleScore(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	id := domain.ReportID(chi.URLParam(req, "id"))

	score, err := r.svc.Score(req.Context(), subject, id)
	if err != nil && !errors.Is(err, domresults.ErrNoResults) {
		return err
	}

	resp := map[string]any{"report_id": id, "score": score}
	if errors.Is(err, domresults.ErrNoResults) {
		resp["message"] = "no results to score"
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/subjects/{subject}/reports/{id}/errors?limit=20
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	id := domain.ReportID(chi.URLParam(req, "id"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.ErrorsFor(req.Context(), subject, id, limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/subjects/{subject}/comparison?from=<id>&to=<id>
func (r *Router) handleComparison(w http.ResponseWriter, req *http.Request) error {
	subject := chi.URLParam(req, "subject")
	from := req.URL.Query().Get("from")
	to := req.URL.Query().Get("to")
	if from == "" || to == "" {
		return fmt.Errorf("from and to report ids are required")
	}

	cmp, err := r.svc.Compare(req.Context(), subject, domain.ReportID(from), domain.ReportID(to))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(cmp)
}
