// Package httpapi exposes the authoring service as a JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/agentconfig"
	"github.com/ppiankov/draftsmith/internal/apperr"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/metrics"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/pipeline"
)

// maxBodyBytes caps request bodies; drafts are the largest payload
const maxBodyBytes = 4 << 20

// Authoring is the slice of pipeline.Service the API serves
type Authoring interface {
	GenerateIdeas(ctx context.Context) ([]model.Idea, error)
	ValidateIdeas(ctx context.Context, ideas []model.Idea) []model.IdeaValidation
	RefineIdeas(ctx context.Context) (model.RefineResult, error)
	GenerateOutline(ctx context.Context, title, description string) (string, error)
	GenerateDraft(ctx context.Context, req model.DraftRequest) (string, error)
	GenerateAllDrafts(ctx context.Context, req model.DraftRequest) (model.DraftSet, error)
	ValidateOutline(ctx context.Context, title, description, text string) model.ValidationResult
	ValidateDraft(ctx context.Context, title, description, draft string) model.ValidationResult
	ReviseOutline(ctx context.Context, text string, result model.ValidationResult) string
	ReviewDraft(ctx context.Context, title, description, text string) model.DraftReview
	EditSuggestions(ctx context.Context, draftHTML string) []string
	ValidateSuggestions(ctx context.Context, draftHTML string, suggestions []string) []model.SuggestionValidation
	ExpandText(ctx context.Context, text string) string
	ApplyInstruction(ctx context.Context, draftHTML, instruction string) string
	SourcesReferences(ctx context.Context, draftHTML string) []model.SourceReference
	AgentConfig(ctx context.Context) (model.AgentConfig, error)
	UpdateAgentConfig(ctx context.Context, u agentconfig.Update) (model.AgentConfig, error)
	Status() pipeline.Status
}

type Server struct {
	svc    Authoring
	logger *zap.Logger
}

func NewServer(svc Authoring, logger *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		logger: logging.Component(logger, "httpapi"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ideas", s.generateIdeas)
		r.Post("/ideas/refine", s.refineIdeas)
		r.Post("/validate-ideas", s.validateIdeas)
		r.Post("/outline", s.generateOutline)
		r.Post("/draft", s.generateDraft)
		r.Post("/validate-outline", s.validateOutline)
		r.Post("/validate-draft", s.validateDraft)
		r.Post("/revise-outline", s.reviseOutline)
		r.Post("/review-draft", s.reviewDraft)
		r.Post("/edit-suggestions", s.editSuggestions)
		r.Post("/validate-suggestions", s.validateSuggestions)
		r.Post("/expand-text", s.expandText)
		r.Post("/apply-instruction", s.applyInstruction)
		r.Post("/sources-references", s.sourcesReferences)
		r.Get("/agent-config", s.getAgentConfig)
		r.Post("/agent-config", s.updateAgentConfig)
		r.Put("/agent-config", s.updateAgentConfig)
		r.Get("/status", s.status)
	})
	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start serves until ctx is cancelled, then drains open requests
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		if route == "/health" || route == "/metrics" {
			return
		}
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.svc.Status())
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps expected failures to 400 and everything else to 500
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	if apperr.IsExpected(err) {
		code = http.StatusBadRequest
	} else {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeJSONStatus(w, errorResponse{Error: err.Error()}, code)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSONStatus(w, errorResponse{Error: msg}, http.StatusBadRequest)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	badRequest(w, "request body is not valid JSON")
	return false
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}
