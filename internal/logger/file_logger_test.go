package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)
	return string(content)
}

func TestLogger_SessionLifecycle(t *testing.T) {
	l, err := NewLogger(t.TempDir(), "BTCUSDT")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(l.GetLogPath()), "BTCUSDT_"))

	l.LogConfig(risk.DefaultConfig())
	l.Warning("vol spike %d", 3)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	content := readLog(t, l)
	assert.Contains(t, content, "RISK SESSION STARTED")
	assert.Contains(t, content, "[INFO] Limits - risk/trade: 0.0100")
	assert.Contains(t, content, "loss limit: 10.00%")
	assert.Contains(t, content, "[WARN] vol spike 3")
	assert.Contains(t, content, "RISK SESSION ENDED")
}

func TestLogger_DecisionsAndKill(t *testing.T) {
	l, err := NewLogger(t.TempDir(), "ETHUSDT")
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)
	rec := types.DecisionRecord{
		Observation: types.Observation{Time: at, Price: 100, Equity: 90000, Volatility: 0.01, RawSignal: 1},
		Decision:    types.Decision{TargetUnits: 0, Reason: "EQUITY_LOSS_LIMIT_TRIPPED", KillSwitch: true},
	}
	l.OnDecision("ETHUSDT", rec)
	l.OnTrip("ETHUSDT", risk.TripEvent{Index: 3, Time: at, Equity: 90000, StartEquity: 100000, Floor: 90000})

	l.SetLogDecisions(false)
	rec.Reason = "KILL_SWITCH_ACTIVE"
	l.OnDecision("ETHUSDT", rec)
	require.NoError(t, l.Close())

	content := readLog(t, l)
	assert.Contains(t, content, "[DECISION] ETHUSDT 2024-01-01T03:00:00Z")
	assert.Contains(t, content, "signal=+1 -> units=+0 reason=EQUITY_LOSS_LIMIT_TRIPPED")
	assert.Contains(t, content, "[KILL]")
	assert.Contains(t, content, "Equity: 90000.00 | Start Equity: 100000.00 | Floor: 90000.00")
	assert.Contains(t, content, "Drawdown from start: 10.00%")
	assert.NotContains(t, content, "KILL_SWITCH_ACTIVE")
}
