package monitoring

import (
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

var (
	// Decision metrics
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_manager_decisions_total",
			Help: "Total number of sizing decisions by reason",
		},
		[]string{"symbol", "reason"},
	)

	orderSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_manager_order_size_units",
			Help:    "Distribution of absolute target units for approved decisions",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
		[]string{"symbol"},
	)

	targetUnits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_manager_target_units",
			Help: "Signed target position of the latest decision",
		},
		[]string{"symbol"},
	)

	// Account metrics
	currentEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_manager_equity",
			Help: "Account equity of the latest observation",
		},
		[]string{"symbol"},
	)

	// Kill switch metrics
	killSwitch = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_manager_kill_switch",
			Help: "1 once the equity loss limit has tripped, otherwise 0",
		},
		[]string{"symbol"},
	)

	equityFloor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_manager_equity_floor",
			Help: "Equity level that tripped the kill switch",
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_manager_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(orderSize)
	prometheus.MustRegister(targetUnits)
	prometheus.MustRegister(currentEquity)
	prometheus.MustRegister(killSwitch)
	prometheus.MustRegister(equityFloor)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordDecision records one decision metric
func RecordDecision(symbol string, rec types.DecisionRecord) {
	decisionsTotal.WithLabelValues(symbol, rec.Reason).Inc()
	targetUnits.WithLabelValues(symbol).Set(float64(rec.TargetUnits))
	currentEquity.WithLabelValues(symbol).Set(rec.Equity)

	if rec.Reason == risk.ReasonOK.String() {
		orderSize.WithLabelValues(symbol).Observe(math.Abs(float64(rec.TargetUnits)))
	}

	if rec.KillSwitch {
		killSwitch.WithLabelValues(symbol).Set(1)
	} else {
		killSwitch.WithLabelValues(symbol).Set(0)
	}
}

// RecordTrip records the kill switch firing
func RecordTrip(symbol string, event risk.TripEvent) {
	killSwitch.WithLabelValues(symbol).Set(1)
	equityFloor.WithLabelValues(symbol).Set(event.Floor)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

// Recorder feeds runner callbacks into the package metrics
type Recorder struct{}

// NewRecorder creates a metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnDecision records a decision
func (r *Recorder) OnDecision(symbol string, rec types.DecisionRecord) {
	RecordDecision(symbol, rec)
}

// OnTrip records a kill switch trip
func (r *Recorder) OnTrip(symbol string, event risk.TripEvent) {
	RecordTrip(symbol, event)
}
