package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qualitypulse/tracker/internal/dashboard"
)

// API is the read-only dashboard surface served as JSON.
type API interface {
	Overview(ctx context.Context, q dashboard.Query) (dashboard.Overview, error)
	Pending(ctx context.Context) (dashboard.PendingView, error)
	Export(ctx context.Context, q dashboard.Query) ([]byte, string, error)
}

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, api API, log *slog.Logger) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewHandler(exposeMetrics, api, log),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func NewHandler(exposeMetrics bool, api API, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	if api != nil {
		h := &handlers{api: api, log: log}
		mux.HandleFunc("GET /api/projects", h.projects)
		mux.HandleFunc("GET /api/metrics", h.metrics)
		mux.HandleFunc("GET /api/pending", h.pending)
		mux.HandleFunc("GET /api/export", h.export)
	}
	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type handlers struct {
	api API
	log *slog.Logger
}

func queryFrom(r *http.Request) (dashboard.Query, error) {
	v := r.URL.Query()
	p, err := dashboard.ParsePeriod(v.Get("mode"), v.Get("from"), v.Get("to"))
	if err != nil {
		return dashboard.Query{}, err
	}
	return dashboard.Query{
		Period:   p,
		Client:   v.Get("client"),
		Project:  v.Get("project"),
		Vertical: v.Get("vertical"),
	}, nil
}

func (h *handlers) projects(w http.ResponseWriter, r *http.Request) {
	q, err := queryFrom(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	ov, err := h.api.Overview(r.Context(), q)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ov.Projects)
}

func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	q, err := queryFrom(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	ov, err := h.api.Overview(r.Context(), q)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"label": ov.Label, "metrics": ov.Metrics})
}

func (h *handlers) pending(w http.ResponseWriter, r *http.Request) {
	view, err := h.api.Pending(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	q, err := queryFrom(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	data, name, err := h.api.Export(r.Context(), q)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (h *handlers) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error("api request failed", "err", err)
	}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
