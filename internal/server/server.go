// Package server exposes the HTTP trigger endpoints: manual run, health,
// and the attempt journal. The pipeline itself enforces single-flight, so
// the handlers just translate outcomes to status codes.
package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/faruk-isik/x-trend-bot/internal/model"
	"github.com/faruk-isik/x-trend-bot/internal/scheduler"
	"github.com/faruk-isik/x-trend-bot/internal/storage"
)

// Handler serves the HTTP trigger API.
type Handler struct {
	runner scheduler.Runner
	store  storage.Storage
	log    *slog.Logger
}

// NewHandler creates a Handler. store may be nil when no journal is
// configured; the attempts endpoints then return 404.
func NewHandler(runner scheduler.Runner, store storage.Storage, log *slog.Logger) *Handler {
	return &Handler{runner: runner, store: store, log: log}
}

// NewRouter builds the gin engine with all routes configured.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// GET / mirrors the original external-cron contract: hitting the
	// root fires one manual run.
	r.GET("/", h.TriggerRun)
	r.POST("/run", h.TriggerRun)
	r.GET("/healthz", h.Health)
	if h.store != nil {
		r.GET("/attempts", h.ListAttempts)
		r.GET("/attempts/last-published", h.LastPublished)
	}
	return r
}

type attemptResponse struct {
	Trigger      model.Trigger `json:"trigger"`
	Outcome      model.Outcome `json:"outcome"`
	AttemptsUsed int           `json:"attempts_used"`
	PublishedID  string        `json:"published_id,omitempty"`
	Diagnostic   string        `json:"diagnostic,omitempty"`
}

// TriggerRun fires one manual pipeline run and reports its outcome.
func (h *Handler) TriggerRun(c *gin.Context) {
	att := h.runner.RunOnce(c.Request.Context(), model.TriggerManual)

	resp := attemptResponse{
		Trigger:      att.Trigger,
		Outcome:      att.Outcome,
		AttemptsUsed: att.AttemptsUsed,
		PublishedID:  att.PublishedID,
		Diagnostic:   att.Diagnostic,
	}
	c.JSON(statusFor(att.Outcome), resp)
}

func statusFor(outcome model.Outcome) int {
	switch outcome {
	case model.OutcomeSkippedBusy:
		return http.StatusConflict
	case model.OutcomePublishFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListAttempts returns recent journal rows, newest first.
func (h *Handler) ListAttempts(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	recs, err := h.store.ListRecentAttempts(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("list attempts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "journal unavailable"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// LastPublished returns the most recent successfully published attempt.
func (h *Handler) LastPublished(c *gin.Context) {
	rec, err := h.store.LastPublished(c.Request.Context())
	if err != nil {
		h.log.Error("last published", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "journal unavailable"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing published yet"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
