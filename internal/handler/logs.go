package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/httputil"
)

// LogsHandler proxies the external activity log
type LogsHandler struct {
	reader services.ActivityLogReader
	logger *slog.Logger
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(reader services.ActivityLogReader, logger *slog.Logger) *LogsHandler {
	return &LogsHandler{
		reader: reader,
		logger: logger,
	}
}

// GetLogs returns activity records, filtered by date, action and limit
// GET /api/logs?date=&action=&limit=
func (h *LogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.LogQuery{
		Date:   q.Get("date"),
		Action: q.Get("action"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}

	body, err := h.reader.QueryLogs(r.Context(), query)
	if err != nil {
		h.logger.Warn("failed to fetch activity logs", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondRawJSON(w, http.StatusOK, body)
}

// SubmitLog records a client-side activity entry
// POST /api/logs
func (h *LogsHandler) SubmitLog(w http.ResponseWriter, r *http.Request) {
	var entry models.ActivityAttributes
	if err := httputil.ParseJSON(w, r, &entry); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if action, _ := entry["action"].(string); action == "" {
		httputil.RespondError(w, http.StatusBadRequest, "action is required")
		return
	}

	body, err := h.reader.Submit(r.Context(), entry)
	if err != nil {
		h.logger.Warn("failed to submit activity", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondRawJSON(w, http.StatusCreated, body)
}

// GetStats counts one day of activity per action (today by default)
// GET /api/logs/stats?date=
func (h *LogsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.Stats(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("failed to fetch activity stats", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
