package data

import (
	"os"
	"path/filepath"
	"time"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
	"github.com/xuri/excelize/v2"
)

// ObservationsSheet is read in preference to the first sheet when present
const ObservationsSheet = "Observations"

// ExcelProvider implements DataProvider for .xlsx workbooks
type ExcelProvider struct {
	sheet string
}

// NewExcelProvider creates a provider that reads the Observations sheet, or the first sheet
func NewExcelProvider() *ExcelProvider {
	return &ExcelProvider{}
}

// NewExcelProviderWithSheet creates a provider bound to a named sheet
func NewExcelProviderWithSheet(sheet string) *ExcelProvider {
	return &ExcelProvider{sheet: sheet}
}

// GetName returns the name of the data provider
func (p *ExcelProvider) GetName() string {
	return "Excel Provider"
}

// LoadData loads observations from a workbook. Numeric time cells are Excel
// serial dates; text cells use the same layouts as CSV.
func (p *ExcelProvider) LoadData(source string) ([]types.Observation, error) {
	f, err := excelize.OpenFile(source)
	if err != nil {
		return nil, boterrors.NewDataError("xlsx", "LoadData", err).WithContext("source", source)
	}
	defer f.Close()

	sheet, err := p.pickSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, boterrors.NewDataError("xlsx", "LoadData", err).
			WithContext("source", source).
			WithContext("sheet", sheet)
	}

	data := []types.Observation{}
	if len(rows) == 0 {
		return data, nil
	}

	name := filepath.Base(source) + "#" + sheet
	parser, err := newRowParser("xlsx", name, rows[0], excelSerialTime)
	if err != nil {
		return nil, err
	}

	for i, row := range rows[1:] {
		obs, err := parser.parse(row, i+2)
		if err != nil {
			return nil, err
		}
		data = append(data, obs)
	}

	if err := p.ValidateData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateData validates the integrity of the loaded data
func (p *ExcelProvider) ValidateData(data []types.Observation) error {
	return validateObservations("xlsx", data)
}

func (p *ExcelProvider) pickSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	want := p.sheet
	if want == "" {
		want = ObservationsSheet
	}
	for _, s := range sheets {
		if s == want {
			return s, nil
		}
	}
	if p.sheet == "" && len(sheets) > 0 {
		return sheets[0], nil
	}
	return "", boterrors.NewValidationError("xlsx", "LoadData", "sheet not found").
		WithContext("sheet", want)
}

func excelSerialTime(v float64) (time.Time, error) {
	return excelize.ExcelDateToTime(v, false)
}

// WriteObservationsXLSX writes observations to an Observations sheet
func WriteObservationsXLSX(path string, data []types.Observation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ObservationsSheet); err != nil {
		return boterrors.NewDataError("xlsx", "WriteObservations", err)
	}

	header := make([]interface{}, len(RequiredColumns))
	for i, c := range RequiredColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ObservationsSheet, "A1", &header); err != nil {
		return boterrors.NewDataError("xlsx", "WriteObservations", err)
	}

	for i, o := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return boterrors.NewDataError("xlsx", "WriteObservations", err)
		}
		row := []interface{}{o.Time.Format(TimeFormat), o.Price, o.Equity, o.Volatility, o.RawSignal}
		if err := f.SetSheetRow(ObservationsSheet, cell, &row); err != nil {
			return boterrors.NewDataError("xlsx", "WriteObservations", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return boterrors.NewDataError("xlsx", "WriteObservations", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return boterrors.NewDataError("xlsx", "WriteObservations", err)
	}
	return nil
}
