package reporting

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
)

// DefaultConsoleReporter renders run output as tables
type DefaultConsoleReporter struct {
	out    io.Writer
	colors bool
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: os.Stdout, colors: true}
}

// NewConsoleReporterWithWriter creates an uncolored reporter writing to w
func NewConsoleReporterWithWriter(w io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: w}
}

func (r *DefaultConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// PrintDecisionTail prints the last n decisions of a run
func (r *DefaultConsoleReporter) PrintDecisionTail(results *backtest.Results, n int) {
	tail := results.Tail(n)

	t := r.newTable(fmt.Sprintf("📋 LAST %d DECISIONS (%s)", len(tail), results.Symbol))
	t.AppendHeader(table.Row{"Time", "Price", "Equity", "Vol", "Signal", "Units", "Reason", "Kill"})
	for _, rec := range tail {
		t.AppendRow(table.Row{
			rec.Time.Format(time.RFC3339),
			data.FormatFloat(rec.Price),
			fmt.Sprintf("%.2f", rec.Equity),
			data.FormatFloat(rec.Volatility),
			fmt.Sprintf("%+d", rec.RawSignal),
			r.colorUnits(rec.TargetUnits),
			r.colorReason(rec.Reason),
			strconv.FormatBool(rec.KillSwitch),
		})
	}
	if len(tail) == 0 {
		t.AppendRow(table.Row{"no observations", "", "", "", "", "", "", ""})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
}

// PrintSummary prints reason counts and account statistics
func (r *DefaultConsoleReporter) PrintSummary(s backtest.Summary) {
	t := r.newTable("📊 RUN SUMMARY")
	t.AppendRows([]table.Row{
		{"Symbol", s.Symbol},
		{"Observations", s.Observations},
	})
	if s.Observations > 0 {
		t.AppendRows([]table.Row{
			{"Period", fmt.Sprintf("%s → %s", s.FirstTime.Format(time.RFC3339), s.LastTime.Format(time.RFC3339))},
			{"Start Equity", fmt.Sprintf("%.2f", s.StartEquity)},
			{"Equity Floor", fmt.Sprintf("%.2f", s.EquityFloor)},
			{"Final Equity", fmt.Sprintf("%.2f", s.FinalEquity)},
			{"Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdown*100)},
		})
	}
	t.AppendSeparator()
	for _, reason := range risk.AllReasons {
		t.AppendRow(table.Row{r.colorReason(reason.String()), s.Count(reason)})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Long / Short OK", fmt.Sprintf("%d / %d", s.LongOK, s.ShortOK)},
		{"Max |Units|", s.MaxAbsUnits},
	})

	killStatus := "armed"
	if s.Tripped && s.Trip != nil {
		killStatus = fmt.Sprintf("TRIPPED at #%d (%s), equity %.2f", s.Trip.Index, s.Trip.Time.Format(time.RFC3339), s.Trip.Equity)
	}
	t.AppendRow(table.Row{"Kill Switch", killStatus})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 26, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, Align: text.AlignLeft},
	})
	t.Render()
}

// PrintConfig prints the effective risk limits
func (r *DefaultConsoleReporter) PrintConfig(cfg risk.Config) {
	t := r.newTable("⚙️  RISK LIMITS")
	t.AppendRows([]table.Row{
		{"Max Risk / Trade", fmt.Sprintf("%.4f (%.2f%% of equity)", cfg.MaxRiskPerTrade, cfg.MaxRiskPerTrade*100)},
		{"Max Exposure", fmt.Sprintf("%.2fx equity", cfg.MaxExposure)},
		{"Max Units", cfg.MaxUnits},
		{"Vol Threshold", data.FormatFloat(cfg.VolThreshold)},
		{"Equity Loss Limit", fmt.Sprintf("%.2f%%", cfg.EquityLossLimit*100)},
		{"Adverse Move / Unit", fmt.Sprintf("%.2f%% of price", risk.AdverseMoveFraction*100)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, Align: text.AlignLeft},
	})
	t.Render()
}

// PrintScenarioComparison prints one row per replayed configuration
func (r *DefaultConsoleReporter) PrintScenarioComparison(results []backtest.ScenarioResult) {
	t := r.newTable("🔬 SCENARIO COMPARISON")
	t.AppendHeader(table.Row{"Scenario", "Loss Limit", "OK", "Blocked", "Killed", "Tripped At", "Max |Units|"})
	for _, res := range results {
		s := res.Summary
		trippedAt := "-"
		if s.Trip != nil {
			trippedAt = fmt.Sprintf("#%d %s", s.Trip.Index, s.Trip.Time.Format(time.RFC3339))
		}
		killed := s.Count(risk.ReasonEquityLossLimitTripped) + s.Count(risk.ReasonKillSwitchActive)
		t.AppendRow(table.Row{
			res.ID,
			fmt.Sprintf("%.2f%%", res.Config.EquityLossLimit*100),
			s.Count(risk.ReasonOK),
			s.Blocked(),
			killed,
			trippedAt,
			s.MaxAbsUnits,
		})
	}
	t.Render()
}

func (r *DefaultConsoleReporter) colorUnits(units int) string {
	s := fmt.Sprintf("%+d", units)
	if !r.colors || units == 0 {
		return s
	}
	if units > 0 {
		return text.FgGreen.Sprint(s)
	}
	return text.FgRed.Sprint(s)
}

func (r *DefaultConsoleReporter) colorReason(reason string) string {
	if !r.colors {
		return reason
	}
	switch risk.Reason(reason) {
	case risk.ReasonOK:
		return text.FgGreen.Sprint(reason)
	case risk.ReasonEquityLossLimitTripped, risk.ReasonKillSwitchActive:
		return text.Colors{text.FgRed, text.Bold}.Sprint(reason)
	default:
		return text.FgYellow.Sprint(reason)
	}
}
