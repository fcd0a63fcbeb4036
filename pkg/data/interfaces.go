package data

import (
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// DataProvider interface for loading observation streams from various sources
type DataProvider interface {
	// LoadData loads observations from the specified source
	LoadData(source string) ([]types.Observation, error)

	// ValidateData validates the integrity of the loaded data
	ValidateData(data []types.Observation) error

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache interface for caching loaded data
type DataCache interface {
	// Get retrieves data from cache if available
	Get(key string) ([]types.Observation, bool)

	// Set stores data in cache
	Set(key string, data []types.Observation)

	// Delete drops one entry
	Delete(key string)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// DataFilter interface for filtering and checking data
type DataFilter interface {
	// FilterByPeriod filters data to the last N period
	FilterByPeriod(data []types.Observation, period time.Duration) []types.Observation

	// FilterByDateRange filters data to a specific date range
	FilterByDateRange(data []types.Observation, start, end time.Time) []types.Observation

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data []types.Observation) error
}

// FileLocator interface for finding data files
type FileLocator interface {
	// FindDataFile attempts to locate an observation file for a symbol
	FindDataFile(dataRoot, symbol string) string
}

// Input column names; the header must contain all of them
const (
	ColumnTime       = "time"
	ColumnPrice      = "price"
	ColumnEquity     = "equity"
	ColumnVolatility = "volatility"
	ColumnRawSignal  = "raw_signal"
)

// RequiredColumns lists the input columns in canonical order
var RequiredColumns = []string{
	ColumnTime,
	ColumnPrice,
	ColumnEquity,
	ColumnVolatility,
	ColumnRawSignal,
}

// Supported file extensions
const (
	ExtCSV     = ".csv"
	ExtXLSX    = ".xlsx"
	ExtParquet = ".parquet"
)

// DateLayout is the date-only input layout
const DateLayout = "2006-01-02"

// TimeLayouts are tried in order when parsing textual time values
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}
