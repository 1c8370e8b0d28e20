package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/compliance-copilot/backend/internal/application/analysis"
	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
	"github.com/compliance-copilot/backend/internal/middleware"
)

// Options carries router wiring that is not part of the pipeline service.
type Options struct {
	AllowedOrigins    []string
	ModelConfigured   bool
	StorageConfigured bool
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
}

type Router struct {
	svc  *appanalysis.Service
	opts Options
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc, opts: opts}
	if opts.Logger == nil {
		r.opts.Logger = slog.Default()
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: r.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	mux.Use(middleware.Logging(r.opts.Logger))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", r.handleHealth)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/reports", r.wrap(r.handleReports))

	mux.Group(func(g chi.Router) {
		if r.opts.RateLimiter != nil {
			g.Use(middleware.RateLimit(r.opts.RateLimiter))
		}
		g.Post("/analyze", r.wrap(r.handleAnalyze))
		g.Post("/analyze_sse", r.handleAnalyzeSSE)
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)
	status := domain.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":  string(code),
		"error": domain.MessageOf(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// readUpload pulls the multipart file field and validates it before any work
// starts, for both the plain and the streaming endpoint.
func (r *Router) readUpload(req *http.Request) (appanalysis.AnalyzeCommand, error) {
	var cmd appanalysis.AnalyzeCommand

	file, header, err := req.FormFile("file")
	if err != nil {
		return cmd, domain.E(domain.CodeInvalidFormat, "missing file field")
	}
	defer file.Close()

	if err := r.svc.ValidateUpload(header.Filename, header.Size); err != nil {
		return cmd, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return cmd, domain.Wrap(domain.CodeInvalidFormat, "could not read upload", err)
	}
	if err := r.svc.ValidateUpload(header.Filename, int64(len(data))); err != nil {
		return cmd, err
	}

	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	cmd.Filename = header.Filename
	cmd.Data = data
	cmd.UserID = userID
	return cmd, nil
}

// POST /analyze?user_id=
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	cmd, err := r.readUpload(req)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	report, err := r.svc.Analyze(req.Context(), cmd, nil)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, http.StatusOK, report)
}

// POST /analyze_sse?user_id=
// Validation failures are rejected with plain HTTP status codes before the
// stream opens; failures after that arrive as a terminal error event.
func (r *Router) handleAnalyzeSSE(w http.ResponseWriter, req *http.Request) {
	cmd, err := r.readUpload(req)
	if err != nil {
		writeError(w, err)
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		writeError(w, domain.Wrap(domain.CodeUpstreamError, "streaming not supported", err))
		return
	}

	middleware.IncrementAnalyses()
	report, err := r.svc.Analyze(req.Context(), cmd, func(stage string, payload map[string]any) {
		stream.send(stage, payload)
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		stream.send("error", map[string]string{"message": domain.MessageOf(err)})
		return
	}
	stream.send("done", report)
}

// GET /reports?user_id=&limit=
func (r *Router) handleReports(w http.ResponseWriter, req *http.Request) error {
	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.ListReports(req.Context(), userID, limit)
	if err != nil {
		return domain.Wrap(domain.CodeUpstreamError, "failed to fetch reports", err)
	}
	return writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

// GET /health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"model":   r.opts.ModelConfigured,
		"storage": r.opts.StorageConfigured,
	})
}
