// Package dashboard serves the browser front end for running topics and
// downloading reports.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/pipeline"
	"github.com/IshaanNene/knowledge-aggregator/internal/report"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Runner is the part of the aggregator the dashboard drives.
type Runner interface {
	ProcessTopic(ctx context.Context, topic string, opts pipeline.Options) (*types.RunResult, error)
	Status() pipeline.SystemStatus
	OutputDir() string
}

// Dashboard serves the web dashboard. Only one run may be in progress.
type Dashboard struct {
	addr    string
	runner  Runner
	metrics *observability.Metrics
	page    *template.Template
	sem     *semaphore.Weighted
	logger  *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*Job
	maxJobs int
	baseCtx context.Context
}

// defaultMaxJobs bounds how many jobs are kept for polling.
const defaultMaxJobs = 50

// New creates a dashboard server.
func New(addr string, runner Runner, metrics *observability.Metrics, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		addr:    addr,
		runner:  runner,
		metrics: metrics,
		page:    template.Must(template.New("dashboard").Parse(dashboardHTML)),
		sem:     semaphore.NewWeighted(1),
		jobs:    make(map[string]*Job),
		maxJobs: defaultMaxJobs,
		baseCtx: context.Background(),
		logger:  logger.With("component", "dashboard"),
	}
}

// Router returns the HTTP handler.
func (d *Dashboard) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", d.handleIndex)
	r.Post("/api/runs", d.handleStartRun)
	r.Get("/api/runs/{id}", d.handleGetRun)
	r.Get("/api/status", d.handleStatus)
	r.Get("/reports/{name}", d.handleReport)
	r.Handle("/metrics", d.metrics.Handler())
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully. Runs
// started from the dashboard are bound to ctx, not to their request.
func (d *Dashboard) Start(ctx context.Context) error {
	d.mu.Lock()
	d.baseCtx = ctx
	d.mu.Unlock()

	srv := &http.Server{
		Addr:              d.addr,
		Handler:           d.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("dashboard starting", "addr", d.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	d.logger.Info("dashboard shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type pageData struct {
	Status  pipeline.SystemStatus
	Reports []report.File
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	reports, err := report.Recent(d.runner.OutputDir(), 10)
	if err != nil {
		d.logger.Warn("list reports failed", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.page.Execute(w, pageData{Status: d.runner.Status(), Reports: reports}); err != nil {
		d.logger.Error("render dashboard failed", "error", err)
	}
}

type runRequest struct {
	Topic      string   `json:"topic"`
	Topics     []string `json:"topics"`
	MaxResults int      `json:"max_results"`
	Filename   string   `json:"filename"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (d *Dashboard) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	topics := normalizeTopics(append([]string{req.Topic}, req.Topics...))
	if len(topics) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: types.ErrEmptyTopic.Error()})
		return
	}
	if req.MaxResults < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "max_results must be >= 0"})
		return
	}

	if !d.sem.TryAcquire(1) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: types.ErrRunInProgress.Error()})
		return
	}

	id := uuid.NewString()
	job := newJob(id, topics)
	d.mu.Lock()
	d.pruneJobsLocked()
	d.jobs[id] = job
	ctx := d.baseCtx
	d.mu.Unlock()

	opts := pipeline.Options{MaxResults: req.MaxResults, Observer: job}
	// A filename override only makes sense for a single topic.
	if len(topics) == 1 {
		opts.OutputFilename = req.Filename
	}

	go d.runJob(ctx, job, opts)

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// pruneJobsLocked drops the oldest finished jobs so that adding one more
// stays within maxJobs. Running jobs are never dropped. d.mu must be held.
func (d *Dashboard) pruneJobsLocked() {
	excess := len(d.jobs) + 1 - d.maxJobs
	if d.maxJobs <= 0 || excess <= 0 {
		return
	}

	type done struct {
		id string
		at time.Time
	}
	var finished []done
	for id, job := range d.jobs {
		if at, ok := job.finishedAt(); ok {
			finished = append(finished, done{id, at})
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].at.Before(finished[j].at) })
	for i := 0; i < excess && i < len(finished); i++ {
		delete(d.jobs, finished[i].id)
	}
}

func (d *Dashboard) runJob(ctx context.Context, job *Job, opts pipeline.Options) {
	defer d.sem.Release(1)
	defer job.finish()

	log := d.logger.With("job_id", job.Snapshot().ID)
	topics := job.Snapshot().Topics
	log.Info("run started", "topics", len(topics))
	for i, topic := range topics {
		job.beginTopic(i, topic)
		res, err := d.safeProcess(ctx, topic, opts)
		if err != nil {
			log.Error("topic failed", "topic", topic, "error", err)
		}
		job.addResult(res)
	}
	log.Info("run finished")
}

func (d *Dashboard) safeProcess(ctx context.Context, topic string, opts pipeline.Options) (res *types.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			now := time.Now()
			res = &types.RunResult{ID: uuid.NewString(), Topic: topic, Status: types.StatusFailed, StartedAt: now, FinishedAt: now}
			err = errors.New("run panicked")
			res.Error = err.Error()
		}
	}()
	return d.runner.ProcessTopic(ctx, topic, opts)
}

func (d *Dashboard) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d.mu.Lock()
	job, ok := d.jobs[id]
	d.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

type statusResponse struct {
	Status  pipeline.SystemStatus `json:"status"`
	Reports []report.File         `json:"reports"`
	Running bool                  `json:"running"`
}

func (d *Dashboard) handleStatus(w http.ResponseWriter, r *http.Request) {
	reports, err := report.Recent(d.runner.OutputDir(), 10)
	if err != nil {
		d.logger.Warn("list reports failed", "error", err)
	}
	if reports == nil {
		reports = []report.File{}
	}

	running := !d.sem.TryAcquire(1)
	if !running {
		d.sem.Release(1)
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: d.runner.Status(), Reports: reports, Running: running})
}

func (d *Dashboard) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid report name"})
		return
	}
	contentType := ""
	switch filepath.Ext(name) {
	case ".md":
		contentType = "text/markdown; charset=utf-8"
	case ".json":
		contentType = "application/json"
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "only .md and .json reports can be downloaded"})
		return
	}

	f, err := os.Open(filepath.Join(d.runner.OutputDir(), name))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "report not found"})
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "report not found"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// normalizeTopics splits entries on newlines, trims them and drops blanks.
func normalizeTopics(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, line := range strings.Split(entry, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
