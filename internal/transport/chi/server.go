// Package chi exposes the HTTP API: chat, classification, document
// management and operational endpoints.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/calyptra/mona/internal/domain"
	domintent "github.com/calyptra/mona/internal/domain/intent"
	chatuc "github.com/calyptra/mona/internal/usecase/chat"
	documentuc "github.com/calyptra/mona/internal/usecase/document"
	healthuc "github.com/calyptra/mona/internal/usecase/health"
	"github.com/calyptra/mona/internal/version"
)

// Classifier is the classification surface exposed over HTTP.
type Classifier interface {
	Classify(query string) (domintent.Result, error)
	RuleCount() int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into HTTP handlers.
type Server struct {
	chat          *chatuc.Service
	classifier    Classifier
	documents     *documentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat *chatuc.Service,
	classifier Classifier,
	documents *documentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:       chat,
		classifier: classifier,
		documents:  documents,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, codeLLMProvider),
		sentinelHandler(domain.ErrClassification, http.StatusInternalServerError, codeClassificationError),
	}
	return s
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Post("/chat", s.handleChat)
		r.Post("/classify", s.handleClassify)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleIngest)
			r.Get("/", s.handleListSources)
			r.Route("/{sourceID}", func(r chi.Router) {
				r.Get("/", s.handleGetSource)
				r.Get("/chunks", s.handleGetChunks)
				r.Patch("/metadata", s.handleUpdateMeta)
				r.Delete("/", s.handleDeleteSource)
			})
		})
	})
}

// handleChat handles POST /api/v1/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	answer, err := s.chat.Ask(r.Context(), req.Query, req.SourceID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponseFromAnswer(answer))
}

// handleClassify handles POST /api/v1/classify. It exposes the raw routing
// decision with full diagnostics, without touching any provider.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.classifier.Classify(req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleIngest handles POST /api/v1/documents.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SourceID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "source_id is required")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "text is required")
		return
	}

	src, err := s.documents.Ingest(r.Context(), req.SourceID, req.Name, req.Text, req.Meta)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sourceToResponse(src))
}

// handleListSources handles GET /api/v1/documents.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sources, total, err := s.documents.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		items = append(items, sourceToResponse(src))
	}
	writeJSON(w, http.StatusOK, sourceListResponse{Items: items, Total: total})
}

// handleGetSource handles GET /api/v1/documents/{sourceID}.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	src, err := s.documents.Get(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sourceToResponse(src))
}

// handleGetChunks handles GET /api/v1/documents/{sourceID}/chunks.
func (s *Server) handleGetChunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := s.documents.GetChunks(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]chunkResponse, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, chunkToResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// handleUpdateMeta handles PATCH /api/v1/documents/{sourceID}/metadata.
func (s *Server) handleUpdateMeta(w http.ResponseWriter, r *http.Request) {
	var req updateMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sourceID := chi.URLParam(r, "sourceID")
	if err := s.documents.UpdateMetadata(r.Context(), sourceID, req.Meta); err != nil {
		s.handleDomainError(w, err)
		return
	}

	src, err := s.documents.Get(r.Context(), sourceID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sourceToResponse(src))
}

// handleDeleteSource handles DELETE /api/v1/documents/{sourceID}.
func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	n, err := s.documents.Delete(r.Context(), sourceID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{SourceID: sourceID, ChunksDeleted: n})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleReady handles GET /ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.health.Ready(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles GET /live.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleInfo handles GET /api/v1/info.
func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Name:    "mona",
		Version: version.Version,
		Commit:  version.Commit,
		Date:    version.Date,
		Rules:   s.classifier.RuleCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrInvalidConfig,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
		domain.ErrClassification,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
