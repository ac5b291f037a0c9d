// Package chi exposes the chat pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
	healthuc "github.com/kailas-cloud/prodask/internal/usecase/health"
	"github.com/kailas-cloud/prodask/internal/usecase/pipeline"
)

const maxMessageBytes = 8 << 10

// asker is the consumer interface over the query pipeline (ISP).
type asker interface {
	Ask(ctx context.Context, sessionID, query string) pipeline.Response
}

// healthChecker is the consumer interface over the health service (ISP).
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server handles the chat HTTP API.
type Server struct {
	pipeline asker
	health   healthChecker
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(p asker, h healthChecker, logger *zap.Logger) *Server {
	return &Server{pipeline: p, health: h, logger: logger}
}

// Routes mounts the API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/chat", s.Chat)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// chatRequest is the POST /v1/chat body.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatResponse is the POST /v1/chat reply.
type chatResponse struct {
	SessionID   string         `json:"session_id"`
	Answer      string         `json:"answer"`
	State       string         `json:"state"`
	FilterStage string         `json:"filter_stage,omitempty"`
	Relaxed     bool           `json:"relaxed,omitempty"`
	Evidence    []evidenceItem `json:"evidence,omitempty"`
	Usage       map[string]int `json:"usage,omitempty"`
}

type evidenceItem struct {
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	ProductID  string  `json:"product_id,omitempty"`
	Score      float64 `json:"score"`
}

// Chat handles POST /v1/chat. A missing session id starts a new session.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp := s.pipeline.Ask(r.Context(), req.SessionID, req.Message)

	writeJSON(w, http.StatusOK, toChatResponse(req.SessionID, resp))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func toChatResponse(sessionID string, resp pipeline.Response) chatResponse {
	out := chatResponse{
		SessionID:   sessionID,
		Answer:      resp.Answer,
		State:       string(resp.State),
		FilterStage: string(resp.Stage),
		Relaxed:     resp.Evidence.Relaxed,
		Evidence:    toEvidenceItems(resp.Evidence),
	}
	if resp.Usage.EmbeddingTokens > 0 || resp.Usage.CompletionTokens > 0 {
		out.Usage = map[string]int{
			"embedding_tokens":  resp.Usage.EmbeddingTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		}
	}
	return out
}

func toEvidenceItems(payload evidence.Payload) []evidenceItem {
	if len(payload.Snippets) == 0 {
		return nil
	}
	items := make([]evidenceItem, len(payload.Snippets))
	for i, sn := range payload.Snippets {
		items[i] = evidenceItem{
			DocumentID: sn.DocumentID,
			Source:     string(sn.Source),
			ProductID:  sn.ProductID,
			Score:      sn.Score,
		}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
