package data

import (
	"os"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the input formats in lookup order
var SupportedExtensions = []string{ExtCSV, ExtXLSX, ExtParquet}

// DefaultFileLocator implements FileLocator for standard file system operations
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// FindDataFile looks for an observation file for symbol under dataRoot.
// Candidates, per extension: {root}/{SYMBOL}/observations{ext}, then {root}/{SYMBOL}{ext}.
// Returns empty string if no file is found.
func (f *DefaultFileLocator) FindDataFile(dataRoot, symbol string) string {
	if dataRoot == "" || symbol == "" {
		return ""
	}

	sym := strings.ToUpper(strings.TrimSpace(symbol))
	for _, ext := range SupportedExtensions {
		for _, candidate := range []string{
			filepath.Join(dataRoot, sym, "observations"+ext),
			filepath.Join(dataRoot, sym+ext),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}
