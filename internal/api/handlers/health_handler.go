package handlers

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler reports service liveness: store reachability plus host
// load, for the ops dashboard.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check: store unreachable")
		respondError(w, http.StatusServiceUnavailable, "Store unreachable")
		return
	}

	stats := map[string]interface{}{}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpuPercent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memPercent"] = vm.UsedPercent
	}

	respondOK(w, map[string]interface{}{
		"status": "ok",
		"host":   stats,
	})
}
