package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// DefaultLogDir is used when no directory is given
const DefaultLogDir = "logs"

// Logger writes a per-run session log for one symbol
type Logger struct {
	symbol       string
	logFile      *os.File
	logger       *log.Logger
	mu           sync.Mutex
	logPath      string
	logDecisions bool
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARN"
	LogLevelError    LogLevel = "ERROR"
	LogLevelDecision LogLevel = "DECISION"
	LogLevelKill     LogLevel = "KILL"
)

// NewLogger creates a session log at {logDir}/{symbol}_{date}.log
func NewLogger(logDir, symbol string) (*Logger, error) {
	if logDir == "" {
		logDir = DefaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.log", symbol, time.Now().Format("2006-01-02"))
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		symbol:       symbol,
		logFile:      file,
		logger:       log.New(file, "", 0),
		logPath:      logPath,
		logDecisions: true,
	}

	l.writeSessionHeader()

	return l, nil
}

// SetLogDecisions toggles one DECISION line per observation
func (l *Logger) SetLogDecisions(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logDecisions = enabled
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🛡️  RISK SESSION STARTED
================================================================================
Symbol: %s
Started: %s
Log File: %s
================================================================================
`, l.symbol, time.Now().Format("2006-01-02 15:04:05"), filepath.Base(l.logPath))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s", timestamp, level, message)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// LogConfig records the limits a run uses
func (l *Logger) LogConfig(cfg risk.Config) {
	l.Info("Limits - risk/trade: %.4f | exposure: %.2fx | max units: %d | vol threshold: %.4f | loss limit: %.2f%%",
		cfg.MaxRiskPerTrade, cfg.MaxExposure, cfg.MaxUnits, cfg.VolThreshold, cfg.EquityLossLimit*100)
}

// OnDecision logs one decision line when decision logging is enabled
func (l *Logger) OnDecision(symbol string, rec types.DecisionRecord) {
	l.mu.Lock()
	enabled := l.logDecisions
	l.mu.Unlock()
	if !enabled {
		return
	}

	l.Log(LogLevelDecision, "%s %s price=%.4f equity=%.2f vol=%.4f signal=%+d -> units=%+d reason=%s",
		symbol, rec.Time.Format(time.RFC3339), rec.Price, rec.Equity, rec.Volatility,
		rec.RawSignal, rec.TargetUnits, rec.Reason)
}

// OnTrip writes the kill switch block
func (l *Logger) OnTrip(symbol string, event risk.TripEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	drop := 0.0
	if event.StartEquity != 0 {
		drop = (event.StartEquity - event.Equity) / event.StartEquity * 100
	}

	l.logger.Printf(`
[%s] [KILL] ==================== KILL SWITCH TRIPPED ====================
🛑 Symbol: %s | Observation #%d at %s
💼 Equity: %.2f | Start Equity: %.2f | Floor: %.2f
📉 Drawdown from start: %.2f%%
🔒 All further targets forced to 0 for this run
=====================================================================`,
		timestamp, symbol, event.Index, event.Time.Format(time.RFC3339),
		event.Equity, event.StartEquity, event.Floor, drop)
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// Close writes the session footer and closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}

	l.logger.Printf(`
================================================================================
🏁 RISK SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, time.Now().Format("2006-01-02 15:04:05"))

	err := l.logFile.Close()
	l.logFile = nil
	return err
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}
