package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xuexi-helper/study-helper/internal/application/dialogue"
	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/logger"
)

// apology replaces any technical error text a student could otherwise see.
const apology = "哎呀，小助手刚才走神了，请再说一遍吧～"

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "Study Helper API",
		"version": s.deps.Version,
		"endpoints": map[string]string{
			"health":   "/health",
			"turn":     "POST /api/v1/turn",
			"session":  "/api/v1/sessions/{userID}",
			"progress": "/api/v1/progress/{userID}",
			"report":   "/api/v1/progress/{userID}/reports/{span}",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive", "uptime": s.Uptime().String()})
}

// ══════════════════════════════════════════════════════════════════════════════
// TURN HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// TurnResponse is the data payload of POST /api/v1/turn.
type TurnResponse struct {
	Messages []dialogue.Message `json:"messages"`
}

// handleTurn handles POST /api/v1/turn. Blank text is a turn like any other;
// the router answers it with a prompt.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var in dialogue.Turn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_request", "Body must be JSON: {\"text\": \"...\", \"userId\": \"...\"}")
		return
	}

	ctx := r.Context()
	if s.config.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.TurnTimeout)
		defer cancel()
	}

	msgs, err := s.deps.Turns.Handle(ctx, in)
	if err != nil {
		logger.FromContext(r.Context()).Error("turn failed",
			logger.UserID(in.UserID),
			logger.Err(err),
		)
		status := http.StatusInternalServerError
		if shared.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, r, status, JSONResponse{
			Data:  TurnResponse{Messages: []dialogue.Message{{Role: shared.RoleAssistant, Content: apology}}},
			Error: &APIError{Code: "turn_failed", Message: apology},
		})
		return
	}

	writeJSON(w, r, http.StatusOK, TurnResponse{Messages: msgs})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION & PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetSession handles GET /api/v1/sessions/{userID}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Sessions.Get(r.PathValue("userID")).Summarize())
}

// handleResetSession handles DELETE /api/v1/sessions/{userID}
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	sess := s.deps.Sessions.Reset(userID)
	logger.FromContext(r.Context()).Info("session reset", logger.UserID(userID))
	writeJSON(w, r, http.StatusOK, sess.Summarize())
}

// handleGetProgress handles GET /api/v1/progress/{userID}
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Progress.Handle(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeProgressError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// PeriodReportResponse is the data payload of the report endpoint.
type PeriodReportResponse struct {
	progress.PeriodReport
	Text string `json:"text"`
}

// handleGetPeriodReport handles GET /api/v1/progress/{userID}/reports/{span}
// where span is day, week or month.
func (s *Server) handleGetPeriodReport(w http.ResponseWriter, r *http.Request) {
	span, ok := progress.ParseSpan(r.PathValue("span"))
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_request", "span must be day, week or month")
		return
	}
	view, err := s.deps.Progress.Handle(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeProgressError(w, r, err)
		return
	}
	report := view.Progress.PeriodReport(span, view.AsOf)
	writeJSON(w, r, http.StatusOK, PeriodReportResponse{PeriodReport: report, Text: report.Format()})
}

func (s *Server) writeProgressError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, r, http.StatusBadRequest, "invalid_request", "user id is required")
	case shared.IsRetryable(err):
		writeJSONError(w, r, http.StatusServiceUnavailable, "store_unavailable", "Progress store is temporarily unavailable")
	default:
		logger.FromContext(r.Context()).Error("progress read failed", logger.Err(err))
		writeJSONError(w, r, http.StatusInternalServerError, "internal_error", "Failed to read progress")
	}
}
