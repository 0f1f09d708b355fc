package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chromabiz/palette-api/internal/ai"
	"github.com/chromabiz/palette-api/internal/httputil"
	"github.com/chromabiz/palette-api/internal/palette"
	"github.com/chromabiz/palette-api/internal/quota"
	"github.com/chromabiz/palette-api/internal/statuscheck"
	"github.com/chromabiz/palette-api/internal/telemetry"
)

const statusListLimit = 1000

// Handler holds dependencies for the API handlers.
type Handler struct {
	quota   quota.Store
	ai      ai.Client // nil when the upstream is unconfigured
	status  *statuscheck.Store
	metrics *telemetry.Metrics
	version string
}

func NewHandler(quotaStore quota.Store, aiClient ai.Client, status *statuscheck.Store, metrics *telemetry.Metrics, version string) *Handler {
	return &Handler{
		quota:   quotaStore,
		ai:      aiClient,
		status:  status,
		metrics: metrics,
		version: version,
	}
}

// Root handles GET /api/
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "ChromaBiz AI API"})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

// GeneratePalettes handles POST /api/generate-palettes.
//
// The generation allowance is charged before the upstream call: a failed
// call still spends the slot, and is answered with the fallback set so
// the user is never left empty-handed for the day.
func (h *Handler) GeneratePalettes(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get(headerRequestID)
	start := time.Now()

	var profile palette.BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	if fields := profile.Validate(); fields != nil {
		httputil.WriteValidationError(w, reqID, fields)
		return
	}

	id := clientIdentifier(r)
	rem, err := h.quota.CheckAndConsume(r.Context(), id, quota.KindGeneration)
	if errors.Is(err, quota.ErrExceeded) {
		slog.Warn("generation quota exhausted", "request_id", reqID, "client", id)
		if h.metrics != nil {
			h.metrics.RecordQuotaRejection(quota.KindGeneration.String())
		}
		httputil.WriteQuotaExceededError(w, reqID, "Daily generation limit reached. Please try again tomorrow.")
		return
	}
	if err != nil {
		slog.Error("quota check failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Quota check failed")
		return
	}

	palettes := h.generate(r, reqID, profile)

	if h.metrics != nil {
		h.metrics.PalettesGenerated.Add(float64(len(palettes)))
		h.metrics.RecordRequest("generate-palettes", "200", float64(time.Since(start).Milliseconds()))
	}
	slog.Info("palettes generated",
		"request_id", reqID,
		"client", id,
		"category", profile.BusinessCategory,
		"count", len(palettes),
		"remaining_generations", rem.Generations,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, palette.GenerateResponse{
		Palettes:             palettes,
		RemainingGenerations: rem.Generations,
	})
}

// generate calls the upstream and falls back to the static sets when it
// is unconfigured, unreachable, or returns nothing parseable.
func (h *Handler) generate(r *http.Request, reqID string, profile palette.BusinessProfile) []palette.Palette {
	if h.ai == nil {
		slog.Warn("upstream unconfigured, serving fallback palettes", "request_id", reqID)
		if h.metrics != nil {
			h.metrics.FallbackServed.Inc()
		}
		return palette.Fallback(profile.BusinessCategory)
	}

	palettes, err := h.ai.GeneratePalettes(r.Context(), profile)
	if err != nil {
		slog.Error("upstream generation failed, serving fallback palettes", "request_id", reqID, "error", err)
		if h.metrics != nil {
			h.metrics.RecordUpstreamFailure("generation")
			h.metrics.FallbackServed.Inc()
		}
		return palette.Fallback(profile.BusinessCategory)
	}
	return palettes
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get(headerRequestID)
	start := time.Now()

	var req palette.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	if req.Message == "" {
		httputil.WriteValidationError(w, reqID, map[string]string{"message": "required"})
		return
	}

	id := clientIdentifier(r)
	rem, err := h.quota.CheckAndConsume(r.Context(), id, quota.KindRevision)
	if errors.Is(err, quota.ErrExceeded) {
		slog.Warn("revision quota exhausted", "request_id", reqID, "client", id)
		if h.metrics != nil {
			h.metrics.RecordQuotaRejection(quota.KindRevision.String())
		}
		httputil.WriteQuotaExceededError(w, reqID, "Daily revision limit reached. Please try again tomorrow.")
		return
	}
	if err != nil {
		slog.Error("quota check failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Quota check failed")
		return
	}

	answer := h.refine(r, reqID, req)

	if h.metrics != nil {
		h.metrics.RecordRequest("chat", "200", float64(time.Since(start).Milliseconds()))
	}
	slog.Info("chat answered",
		"request_id", reqID,
		"client", id,
		"session_id", req.SessionID,
		"remaining_revisions", rem.Revisions,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, palette.ChatResponse{
		Response:           answer,
		RemainingRevisions: rem.Revisions,
	})
}

func (h *Handler) refine(r *http.Request, reqID string, req palette.ChatRequest) string {
	if h.ai == nil {
		slog.Warn("upstream unconfigured, serving chat apology", "request_id", reqID)
		return ai.Apology
	}
	answer, err := h.ai.Refine(r.Context(), req.Message, req.Context)
	if err != nil {
		slog.Error("upstream chat failed, serving apology", "request_id", reqID, "error", err)
		if h.metrics != nil {
			h.metrics.RecordUpstreamFailure("revision")
		}
		return ai.Apology
	}
	return answer
}

// RateLimit handles GET /api/rate-limit.
func (h *Handler) RateLimit(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get(headerRequestID)

	rem, err := h.quota.Peek(r.Context(), clientIdentifier(r))
	if err != nil {
		slog.Error("quota peek failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Quota check failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, palette.RateLimitStatus{
		GenerationsRemaining: rem.Generations,
		RevisionsRemaining:   rem.Revisions,
		ResetTime:            rem.ResetAt.Format(time.RFC3339),
	})
}

// CreateStatus handles POST /api/status.
func (h *Handler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get(headerRequestID)

	if h.status == nil {
		httputil.WriteInternalError(w, reqID, "Database unavailable")
		return
	}

	var in struct {
		ClientName string `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	if in.ClientName == "" {
		httputil.WriteValidationError(w, reqID, map[string]string{"client_name": "required"})
		return
	}

	check, err := h.status.Create(r.Context(), in.ClientName)
	if err != nil {
		slog.Error("status check insert failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to store status check")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, check)
}

// ListStatus handles GET /api/status.
func (h *Handler) ListStatus(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get(headerRequestID)

	if h.status == nil {
		httputil.WriteInternalError(w, reqID, "Database unavailable")
		return
	}

	checks, err := h.status.List(r.Context(), statusListLimit)
	if err != nil {
		slog.Error("status check query failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to list status checks")
		return
	}
	if checks == nil {
		checks = []statuscheck.StatusCheck{}
	}
	httputil.WriteJSON(w, http.StatusOK, checks)
}
