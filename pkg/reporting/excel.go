package reporting

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// Workbook sheet names
const (
	DecisionsSheet = "Decisions"
	SummarySheet   = "Summary"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteDecisionsXLSX writes a Decisions sheet and a Summary sheet
func (r *DefaultExcelReporter) WriteDecisionsXLSX(results *backtest.Results, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), DecisionsSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(SummarySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeDecisionsSheet(fx, DecisionsSheet, results.Records, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, SummarySheet, results.Summary, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

type styleDef struct {
	target *int
	style  *excelize.Style
}

// createExcelStyles registers the workbook styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	lightBorder := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	var styles ExcelStyles
	defs := []styleDef{
		{&styles.HeaderStyle, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
			Fill:      fill("2F4F4F"), // Dark slate gray
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border: []excelize.Border{
				{Type: "left", Color: "000000", Style: 1},
				{Type: "right", Color: "000000", Style: 1},
				{Type: "top", Color: "000000", Style: 1},
				{Type: "bottom", Color: "000000", Style: 1},
			},
		}},
		{&styles.BaseStyle, &excelize.Style{Border: lightBorder}},
		{&styles.NumberStyle, &excelize.Style{
			NumFmt:    4, // #,##0.00
			Alignment: &excelize.Alignment{Horizontal: "right"},
			Border:    lightBorder,
		}},
		{&styles.PercentStyle, &excelize.Style{
			NumFmt:    10, // 0.00%
			Alignment: &excelize.Alignment{Horizontal: "right"},
			Border:    lightBorder,
		}},
		{&styles.LongStyle, &excelize.Style{Fill: fill("E6FFE6"), Border: lightBorder}}, // Light green
		{&styles.ShortStyle, &excelize.Style{Fill: fill("FFE6E6"), Border: lightBorder}}, // Light red
		{&styles.BlockedStyle, &excelize.Style{Fill: fill("FFF8DC"), Border: lightBorder}}, // Cornsilk
		{&styles.KillStyle, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:   fill("B22222"), // Firebrick
			Border: lightBorder,
		}},
		{&styles.SummaryStyle, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
			Fill:      fill("4472C4"), // Blue
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		}},
	}

	for _, d := range defs {
		id, err := fx.NewStyle(d.style)
		if err != nil {
			return styles, err
		}
		*d.target = id
	}
	return styles, nil
}

func (r *DefaultExcelReporter) writeDecisionsSheet(fx *excelize.File, sheet string, records []types.DecisionRecord, styles ExcelStyles) error {
	header := make([]interface{}, len(DecisionColumns))
	for i, c := range DecisionColumns {
		header[i] = c
	}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(DecisionColumns))
	if err := fx.SetCellStyle(sheet, "A1", lastCol+"1", styles.HeaderStyle); err != nil {
		return err
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.Time.Format(data.TimeFormat),
			rec.Price,
			rec.Equity,
			rec.Volatility,
			rec.RawSignal,
			rec.TargetUnits,
			rec.Reason,
			rec.KillSwitch,
		}
		start := fmt.Sprintf("A%d", row)
		if err := fx.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, start, fmt.Sprintf("%s%d", lastCol, row), rowStyle(rec, styles)); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 26, "B": 12, "C": 14, "D": 12, "E": 11, "F": 13, "G": 28, "H": 12}
	for col, w := range widths {
		if err := fx.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func rowStyle(rec types.DecisionRecord, styles ExcelStyles) int {
	switch {
	case rec.KillSwitch:
		return styles.KillStyle
	case rec.TargetUnits > 0:
		return styles.LongStyle
	case rec.TargetUnits < 0:
		return styles.ShortStyle
	case rec.Reason == risk.ReasonNoSignal.String():
		return styles.BaseStyle
	default:
		return styles.BlockedStyle
	}
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, s backtest.Summary, styles ExcelStyles) error {
	row := 1
	section := func(title string) error {
		cell := fmt.Sprintf("A%d", row)
		if err := fx.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
		if err := fx.MergeCell(sheet, cell, fmt.Sprintf("B%d", row)); err != nil {
			return err
		}
		row++
		return fx.SetCellStyle(sheet, cell, fmt.Sprintf("B%d", row-1), styles.SummaryStyle)
	}
	line := func(label string, value interface{}, style int) error {
		if err := fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), label); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), value); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), style); err != nil {
			return err
		}
		row++
		return nil
	}

	type entry struct {
		label string
		value interface{}
		style int
	}
	trip := "armed"
	if s.Trip != nil {
		trip = fmt.Sprintf("#%d at %s", s.Trip.Index, s.Trip.Time.Format(time.RFC3339))
	}

	sections := []struct {
		title   string
		entries []entry
	}{
		{"RUN", []entry{
			{"Symbol", s.Symbol, styles.BaseStyle},
			{"Observations", s.Observations, styles.BaseStyle},
			{"First Time", s.FirstTime.Format(time.RFC3339), styles.BaseStyle},
			{"Last Time", s.LastTime.Format(time.RFC3339), styles.BaseStyle},
		}},
		{"LIMITS", []entry{
			{"Max Risk / Trade", s.Config.MaxRiskPerTrade, styles.PercentStyle},
			{"Max Exposure", s.Config.MaxExposure, styles.NumberStyle},
			{"Max Units", s.Config.MaxUnits, styles.BaseStyle},
			{"Vol Threshold", s.Config.VolThreshold, styles.BaseStyle},
			{"Equity Loss Limit", s.Config.EquityLossLimit, styles.PercentStyle},
		}},
		{"EQUITY", []entry{
			{"Start Equity", s.StartEquity, styles.NumberStyle},
			{"Equity Floor", s.EquityFloor, styles.NumberStyle},
			{"Final Equity", s.FinalEquity, styles.NumberStyle},
			{"Peak Equity", s.PeakEquity, styles.NumberStyle},
			{"Max Drawdown", s.MaxDrawdown, styles.PercentStyle},
			{"Kill Switch", trip, styles.BaseStyle},
		}},
	}

	reasons := make([]entry, 0, len(risk.AllReasons)+3)
	for _, reason := range risk.AllReasons {
		reasons = append(reasons, entry{reason.String(), s.Count(reason), styles.BaseStyle})
	}
	reasons = append(reasons,
		entry{"Long OK", s.LongOK, styles.BaseStyle},
		entry{"Short OK", s.ShortOK, styles.BaseStyle},
		entry{"Max |Units|", s.MaxAbsUnits, styles.BaseStyle},
	)
	sections = append(sections, struct {
		title   string
		entries []entry
	}{"DECISIONS", reasons})

	for _, sec := range sections {
		if err := section(sec.title); err != nil {
			return err
		}
		for _, e := range sec.entries {
			if err := line(e.label, e.value, e.style); err != nil {
				return err
			}
		}
		row++
	}

	if err := fx.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return fx.SetColWidth(sheet, "B", "B", 32)
}

// WriteDecisionsXLSX is the package-level convenience form
func WriteDecisionsXLSX(results *backtest.Results, path string) error {
	return NewDefaultExcelReporter().WriteDecisionsXLSX(results, path)
}
