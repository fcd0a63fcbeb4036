package data

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// CSVProvider implements DataProvider for CSV files with a header row
type CSVProvider struct {
	comma rune
}

// NewCSVProvider creates a new comma separated data provider
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{comma: ','}
}

// NewCSVProviderWithComma creates a provider for another delimiter such as ';' or '\t'
func NewCSVProviderWithComma(comma rune) *CSVProvider {
	return &CSVProvider{comma: comma}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads observations from a CSV file. The first malformed row aborts
// the load; an empty file yields no observations.
func (p *CSVProvider) LoadData(source string) ([]types.Observation, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, boterrors.NewDataError("csv", "LoadData", err).WithContext("source", source)
	}
	defer file.Close()

	return p.read(file, filepath.Base(source))
}

func (p *CSVProvider) read(r io.Reader, name string) ([]types.Observation, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []types.Observation{}, nil
		}
		return nil, boterrors.NewValidationError("csv", "LoadData", "unreadable header").
			WithContext("source", name).
			WithUnderlying(err)
	}

	parser, err := newRowParser("csv", name, header, unixTime)
	if err != nil {
		return nil, err
	}

	data := []types.Observation{}
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			verr := boterrors.NewValidationError("csv", "LoadData", "malformed row").
				WithContext("source", name).
				WithUnderlying(err)
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				verr.WithContext("line", parseErr.StartLine)
			}
			return nil, verr
		}

		// Line where the record starts; quoted fields may span lines
		line, _ := reader.FieldPos(0)
		obs, err := parser.parse(record, line)
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
func (p *CSVProvider) ValidateData(data []types.Observation) error {
	return validateObservations("csv", data)
}

// WriteObservationsCSV writes observations with the canonical input header
func WriteObservationsCSV(path string, data []types.Observation) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return boterrors.NewDataError("csv", "WriteObservations", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return boterrors.NewDataError("csv", "WriteObservations", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(RequiredColumns); err != nil {
		return boterrors.NewDataError("csv", "WriteObservations", err)
	}
	for _, o := range data {
		if err := writer.Write(ObservationFields(o)); err != nil {
			return boterrors.NewDataError("csv", "WriteObservations", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return boterrors.NewDataError("csv", "WriteObservations", err)
	}
	return nil
}
