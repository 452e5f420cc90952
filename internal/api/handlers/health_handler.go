package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler reports process and host health.
type HealthHandler struct {
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now()}
}

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	Goroutines    int     `json:"goroutines"`
	MemUsedPct    float64 `json:"memUsedPct"`
	CPUPct        float64 `json:"cpuPct"`
}

// Get reports liveness plus host memory and CPU usage.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemUsedPct = vm.UsedPercent
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		status.CPUPct = pcts[0]
	}

	respondJSON(w, http.StatusOK, status)
}
