package data

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// DataManager combines all data operations in a convenient interface
type DataManager struct {
	providers map[string]DataProvider
	filter    DataFilter
	locator   FileLocator
}

// NewDataManager creates a data manager with cached CSV, XLSX and Parquet providers
func NewDataManager() *DataManager {
	return &DataManager{
		providers: map[string]DataProvider{
			ExtCSV:     NewCachedProvider(NewCSVProvider()),
			ExtXLSX:    NewCachedProvider(NewExcelProvider()),
			ExtParquet: NewCachedProvider(NewParquetProvider()),
		},
		filter:  NewDefaultDataFilter(),
		locator: NewDefaultFileLocator(),
	}
}

// NewDataManagerWithProvider creates a data manager that routes every source to provider
func NewDataManagerWithProvider(provider DataProvider) *DataManager {
	return &DataManager{
		providers: map[string]DataProvider{"": provider},
		filter:    NewDefaultDataFilter(),
		locator:   NewDefaultFileLocator(),
	}
}

// ProviderFor returns the provider registered for the source's extension
func (dm *DataManager) ProviderFor(source string) (DataProvider, error) {
	if p, ok := dm.providers[""]; ok {
		return p, nil
	}

	ext := strings.ToLower(filepath.Ext(source))
	if p, ok := dm.providers[ext]; ok {
		return p, nil
	}
	return nil, boterrors.NewValidationError("data", "ProviderFor", "unsupported file extension").
		WithContext("source", source).
		WithContext("extension", ext)
}

// LoadObservations loads and validates an observation stream
func (dm *DataManager) LoadObservations(source string) ([]types.Observation, error) {
	provider, err := dm.ProviderFor(source)
	if err != nil {
		return nil, err
	}

	data, err := provider.LoadData(source)
	if err != nil {
		return nil, err
	}

	if err := provider.ValidateData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// FilterDataByPeriod filters data by trailing time period
func (dm *DataManager) FilterDataByPeriod(data []types.Observation, period time.Duration) []types.Observation {
	return dm.filter.FilterByPeriod(data, period)
}

// FilterDataByDateRange filters data to an inclusive date range
func (dm *DataManager) FilterDataByDateRange(data []types.Observation, start, end time.Time) []types.Observation {
	return dm.filter.FilterByDateRange(data, start, end)
}

// FindDataFile locates an observation file for a symbol
func (dm *DataManager) FindDataFile(dataRoot, symbol string) string {
	return dm.locator.FindDataFile(dataRoot, symbol)
}

// SaveObservations writes observations in the format implied by the extension
func SaveObservations(path string, data []types.Observation) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		return WriteObservationsCSV(path, data)
	case ExtXLSX:
		return WriteObservationsXLSX(path, data)
	case ExtParquet:
		return WriteObservationsParquet(path, data)
	default:
		return boterrors.NewValidationError("data", "SaveObservations", "unsupported file extension").
			WithContext("path", path)
	}
}

// ParseTrailingPeriod parses period strings like "7d", "30d", "180d" or Go durations like "36h"
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		nStr := strings.TrimSuffix(s, "d")
		if nStr == "" {
			return 0, false
		}
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	// allow raw durations too (e.g., 168h)
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}

// ParseDate accepts the textual time layouts used for input files
func ParseDate(s string) (time.Time, error) {
	t, err := parseTimeText(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, boterrors.NewValidationError("data", "ParseDate", "unrecognized date").
			WithContext("value", s)
	}
	return t, nil
}

// ParseDateEnd parses an upper bound; a date without a time of day covers
// that whole day
func ParseDateEnd(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if day, err := time.Parse(DateLayout, s); err == nil {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return ParseDate(s)
}
