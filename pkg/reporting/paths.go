package reporting

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultResultsRoot is the parent of per-symbol output directories
const DefaultResultsRoot = "results"

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns results/{SYMBOL}
func (p *DefaultPathManager) GetDefaultOutputDir(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		s = "UNKNOWN"
	}
	return filepath.Join(DefaultResultsRoot, s)
}

// EnsureDirectoryExists creates the parent directory of path if needed
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// DefaultOutputDir is the package-level convenience form of GetDefaultOutputDir
func DefaultOutputDir(symbol string) string {
	return NewDefaultPathManager().GetDefaultOutputDir(symbol)
}
