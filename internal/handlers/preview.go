package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hll-crcon/stats-hooks/internal/hooks"
	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/rcon"
)

// GetAllTimeStats renders the stats message a player would receive in game
// @Summary Preview All-Time Stats
// @Description Renders the all-time stats message of a player in the requested language
// @Tags Preview
// @Produce json
// @Security HookToken
// @Param playerID path string true "Steam64 or Windows player id"
// @Param lang query string false "Language code (en, fr, de, pl)"
// @Param name query string false "Display name, defaults to the player id"
// @Success 200 {object} map[string]interface{} "Rendered message"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Tracked"
// @Failure 502 {object} map[string]string "Host Unavailable"
// @Router /players/{playerID}/all-time-stats [get]
func (h *Handler) GetAllTimeStats(w http.ResponseWriter, r *http.Request) {
	if h.allTimeStats == nil {
		h.errorResponse(w, http.StatusNotFound, "All-time stats hook disabled")
		return
	}

	playerID := chi.URLParam(r, "playerID")
	if !rcon.ValidPlayerID(playerID) {
		h.errorResponse(w, http.StatusBadRequest, "Invalid player id")
		return
	}
	tbl, ok := h.table(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = playerID
	}

	text, err := h.allTimeStats.Render(r.Context(), playerID, name, tbl)
	if err != nil {
		h.renderError(w, "all_time_stats", err)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"player_id": playerID,
		"platform":  rcon.Platform(playerID),
		"lang":      tbl.Lang().String(),
		"message":   text,
	})
}

// GetTops renders the live leaderboard
// @Summary Preview Tops
// @Description Ranks the live match and renders the tops message without granting VIP
// @Tags Preview
// @Produce json
// @Security HookToken
// @Param lang query string false "Language code (en, fr, de, pl)"
// @Success 200 {object} map[string]interface{} "Rendered message"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} map[string]string "Host Unavailable"
// @Router /tops [get]
func (h *Handler) GetTops(w http.ResponseWriter, r *http.Request) {
	if h.tops == nil {
		h.errorResponse(w, http.StatusNotFound, "Tops hook disabled")
		return
	}
	tbl, ok := h.table(w, r)
	if !ok {
		return
	}

	text, err := h.tops.Render(r.Context(), tbl)
	if err != nil {
		h.renderError(w, "tops", err)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"lang":    tbl.Lang().String(),
		"message": text,
	})
}

// table picks the translation table from ?lang=, defaulting to the
// configured language.
func (h *Handler) table(w http.ResponseWriter, r *http.Request) (locale.Table, bool) {
	lang := h.defaultLang
	if q := r.URL.Query().Get("lang"); q != "" {
		parsed, err := locale.ParseLang(q)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return locale.Table{}, false
		}
		lang = parsed
	}
	return h.locales.Table(lang), true
}

func (h *Handler) renderError(w http.ResponseWriter, hook string, err error) {
	switch hooks.KindOf(err) {
	case hooks.KindNotTracked:
		h.errorResponse(w, http.StatusNotFound, "Player not tracked")
	case hooks.KindInvalidInput:
		h.logger.Warnw("Preview rejected", "hook", hook, "error", err)
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case hooks.KindQuery:
		h.logger.Errorw("Preview query failed", "hook", hook, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Stats query failed")
	default:
		h.logger.Errorw("Preview host call failed", "hook", hook, "error", err)
		h.errorResponse(w, http.StatusBadGateway, "Host unavailable")
	}
}
