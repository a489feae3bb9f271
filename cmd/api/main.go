package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"suppqc/adapters/columns"
	"suppqc/adapters/ingest"
	"suppqc/adapters/report"
	"suppqc/app"
	"suppqc/domain/core"
	"suppqc/domain/pvalue"
	"suppqc/internal/config"
	"suppqc/internal/logx"
)

// server exposes the batch pipeline over HTTP: upload a supplementary file,
// get back the diagnostic summaries as JSON or as a rendered report.
type server struct {
	svc *app.BatchService
	log *logx.Logger
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := logx.NewDefaultLogger()

	summarizer, err := pvalue.NewSummarizer(cfg.Summarizer(), logger)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	s := &server{
		svc: app.NewBatchService(
			ingest.NewFileSource(ingest.DefaultConfig(), logger),
			columns.NewSelector(columns.DefaultConfig()),
			summarizer,
			cfg.Summarizer(),
			cfg.Workers,
			logger,
		),
		log: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/summarize", s.handleSummarize)
	r.Post("/report", s.handleReport)

	logger.Info("[API] listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleSummarize runs the pipeline over one uploaded file and returns the
// summaries as JSON.
func (s *server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	runID, results, ok := s.runUpload(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		RunID     string                `json:"run_id"`
		Summaries []pvalue.TableSummary `json:"summaries"`
	}{RunID: runID.String(), Summaries: results})
}

// handleReport runs the pipeline and renders the batch report as HTML.
func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	runID, results, ok := s.runUpload(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.RenderHTML(runID.String(), results))
}

// runUpload stores the multipart "file" part under its original name, so the
// ingestion dispatch sees the real extension, and runs the batch on it.
func (s *server) runUpload(w http.ResponseWriter, r *http.Request) (core.RunID, []pvalue.TableSummary, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("missing file upload: %v", err), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	dir, err := os.MkdirTemp("", "suppqc-upload-")
	if err != nil {
		http.Error(w, "failed to stage upload", http.StatusInternalServerError)
		return "", nil, false
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		http.Error(w, "failed to stage upload", http.StatusInternalServerError)
		return "", nil, false
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		http.Error(w, "failed to stage upload", http.StatusInternalServerError)
		return "", nil, false
	}
	dst.Close()

	runID, results, err := s.svc.Run(r.Context(), []string{path})
	if err != nil {
		http.Error(w, fmt.Sprintf("batch failed: %v", err), http.StatusInternalServerError)
		return "", nil, false
	}
	return runID, results, true
}
