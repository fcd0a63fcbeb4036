package monitoring

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

var startTime = time.Now()

// Health status values
const (
	StatusRunning = "running"
	StatusIdle    = "idle"
	StatusHalted  = "halted"
)

// HealthChecker tracks run progress and reports it over HTTP
type HealthChecker struct {
	mu              sync.RWMutex
	processed       int
	lastObservation time.Time
	tripped         map[string]risk.TripEvent
}

// HealthStatus is the JSON body served by HealthChecker
type HealthStatus struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Processed       int       `json:"processed"`
	LastObservation time.Time `json:"last_observation"`
	Uptime          string    `json:"uptime"`
	Halted          []string  `json:"halted,omitempty"`
}

// NewHealthChecker creates a checker with no observations
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		tripped: make(map[string]risk.TripEvent),
	}
}

// OnDecision records progress
func (h *HealthChecker) OnDecision(_ string, rec types.DecisionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processed++
	h.lastObservation = rec.Time
}

// OnTrip marks the symbol as halted
func (h *HealthChecker) OnTrip(symbol string, event risk.TripEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tripped[symbol] = event
}

// Status returns the current health snapshot
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := StatusRunning
	if h.processed == 0 {
		status = StatusIdle
	}

	var halted []string
	for symbol := range h.tripped {
		halted = append(halted, symbol)
	}
	sort.Strings(halted)
	if len(halted) > 0 {
		status = StatusHalted
	}

	return HealthStatus{
		Status:          status,
		Timestamp:       time.Now(),
		Processed:       h.processed,
		LastObservation: h.lastObservation,
		Uptime:          time.Since(startTime).String(),
		Halted:          halted,
	}
}

// ServeHTTP answers 503 once any kill switch has tripped
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == StatusHalted {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
