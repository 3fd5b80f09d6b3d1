package game

import (
	"crash_backend/internal/converter"
	"crash_backend/internal/repository"
	"crash_backend/internal/service"
	"crash_backend/pkg/resp"
	"net/http"
	"strconv"
)

type HandlerDeps struct {
	Serv  service.GameService
	Stats repository.StatsRepository
}

type Handler struct {
	serv  service.GameService
	stats repository.StatsRepository
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, stats: deps.Stats}
}

// Config - public game tuning
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToConfigResponse(h.serv.Config()))
}

// State - current round snapshot. The crash point is present only after the crash.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.serv.Snapshot(r.Context())
	if err != nil {
		resp.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	today, allTime, err := h.serv.Highest(r.Context())
	if err != nil {
		resp.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(state, today, allTime))
}

// History - ?limit=N, newest first, capped by the configured history size
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := h.serv.Config().HistorySize()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			resp.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	records, err := h.serv.History(r.Context(), limit)
	if err != nil {
		resp.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToHistoryResponse(records))
}

// Stats - house totals since start
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToHouseStatsResponse(h.stats.HouseState()))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.serv.Snapshot(r.Context()); err != nil {
		resp.WriteError(w, http.StatusServiceUnavailable, "engine stopped")
		return
	}
	resp.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
