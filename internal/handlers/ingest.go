package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hll-crcon/stats-hooks/internal/models"
)

// IngestEvents handles POST /api/v1/hooks/events
// @Summary Ingest Host Log Lines
// @Description Accepts newline-separated JSON structured log lines forwarded by CRCON. Invalid or ignored lines are skipped; the response reports how many were queued.
// @Tags Hooks
// @Accept json
// @Produce json
// @Security HookToken
// @Param body body []models.LogEvent true "Log lines"
// @Success 202 {object} map[string]interface{} "Accepted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 413 {object} map[string]string "Request Entity Too Large"
// @Router /hooks/events [post]
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	defer r.Body.Close()

	processed := 0
	for i, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var event models.LogEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			h.logger.Warnw("Failed to unmarshal log line", "error", err, "lineNum", i, "preview", line[:min(len(line), 100)])
			continue
		}

		if err := h.validator.Struct(&event); err != nil {
			h.logger.Warnw("Validation failed for log line", "error", err, "lineNum", i)
			continue
		}

		if event.Kind() == models.EventUnknown {
			h.logger.Debugw("Ignoring log line", "action", event.Action)
			continue
		}

		if !h.pool.Enqueue(&event) {
			h.logger.Warn("Worker pool queue full, dropping remaining events in batch")
			break
		}
		processed++
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":    "accepted",
		"processed": processed,
	})
}
