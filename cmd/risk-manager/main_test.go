package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/config"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/reporting"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

const killSwitchCSV = `time,price,equity,volatility,raw_signal
2024-01-01T00:00:00Z,100,100000,0.01,1
2024-01-01T01:00:00Z,100,100000,0.02,1
2024-01-01T02:00:00Z,100,100000,0.01,0
2024-01-01T03:00:00Z,100,90000,0.01,1
2024-01-01T04:00:00Z,100,120000,0.01,-1
`

// runCLI runs the command with an isolated env file and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-env", filepath.Join(t.TempDir(), "none.env"), "-data-root", t.TempDir()}, args...)
	err := run(t.Context(), args, &stdout, &stderr)
	return stdout.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observations.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_JSONLStream(t *testing.T) {
	path := writeCSV(t, killSwitchCSV)

	out, err := runCLI(t, "-data", path, "-jsonl")
	require.NoError(t, err)

	var reasons []string
	var units []int
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var rec types.DecisionRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		reasons = append(reasons, rec.Reason)
		units = append(units, rec.TargetUnits)
	}

	assert.Equal(t, []string{
		string(risk.ReasonOK),
		string(risk.ReasonBlockedHighVol),
		string(risk.ReasonNoSignal),
		string(risk.ReasonEquityLossLimitTripped),
		string(risk.ReasonKillSwitchActive),
	}, reasons)
	assert.Equal(t, []int{5, 0, 0, 0, 0}, units)
}

func TestRun_TablesAndExports(t *testing.T) {
	path := writeCSV(t, killSwitchCSV)
	dir := t.TempDir()
	decisions := filepath.Join(dir, "decisions.parquet")
	summary := filepath.Join(dir, "summary.json")

	out, err := runCLI(t, "-data", path, "-symbol", "BTCUSDT", "-tail", "3", "-out", decisions, "-summary", summary)
	require.NoError(t, err)

	assert.Contains(t, out, string(risk.ReasonKillSwitchActive))
	assert.Contains(t, out, "Decisions saved to")

	records, err := reporting.ReadDecisionsParquet(decisions)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.True(t, records[4].KillSwitch)

	raw, err := os.ReadFile(summary)
	require.NoError(t, err)
	var s backtest.Summary
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "BTCUSDT", s.Symbol)
	assert.Equal(t, 5, s.Observations)
	assert.True(t, s.Tripped)
	require.NotNil(t, s.Trip)
	assert.Equal(t, 3, s.Trip.Index)
}

func TestRun_ConsoleOnlySkipsFiles(t *testing.T) {
	path := writeCSV(t, killSwitchCSV)
	decisions := filepath.Join(t.TempDir(), "decisions.csv")

	_, err := runCLI(t, "-data", path, "-console-only", "-out", decisions)
	require.NoError(t, err)

	_, statErr := os.Stat(decisions)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_SampleFallbackTripsKillSwitch(t *testing.T) {
	summary := filepath.Join(t.TempDir(), "summary.json")

	_, err := runCLI(t, "-data", filepath.Join(t.TempDir(), "missing.csv"), "-sample", "-summary", summary)
	require.NoError(t, err)

	raw, err := os.ReadFile(summary)
	require.NoError(t, err)
	var s backtest.Summary
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, data.DefaultSampleSize, s.Observations)
	assert.True(t, s.Tripped)
}

func TestRun_MissingFileWithoutSample(t *testing.T) {
	_, err := runCLI(t, "-data", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	category, ok := boterrors.CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, boterrors.ErrorCategoryData, category)
}

func TestRun_MalformedRowIsValidationError(t *testing.T) {
	path := writeCSV(t, "time,price,equity,volatility,raw_signal\n2024-01-01,100,1000,0.01,2\n")

	_, err := runCLI(t, "-data", path)
	require.Error(t, err)
	assert.True(t, boterrors.IsValidationError(err))
}

func TestRun_PrintConfigUsesFlags(t *testing.T) {
	out, err := runCLI(t, "-print-config", "-max-units", "3", "-symbol", "ETHUSDT")
	require.NoError(t, err)

	var nested config.NestedConfig
	require.NoError(t, json.Unmarshal([]byte(out), &nested))
	assert.Equal(t, 3, nested.Risk.MaxUnits)
	assert.Equal(t, "ETHUSDT", nested.Input.Symbol)
	// Unset flags keep defaults
	assert.Equal(t, risk.DefaultVolThreshold, nested.Risk.VolThreshold)
}

func TestRun_InvalidConfigIsConfigError(t *testing.T) {
	_, err := runCLI(t, "-print-config", "-equity-loss-limit", "1.5")
	require.Error(t, err)
	assert.True(t, boterrors.IsConfigError(err))
}

func TestRun_SaveConfigAndWriteSample(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "effective.yaml")
	samplePath := filepath.Join(dir, "sample", "observations.csv")

	_, err := runCLI(t, "-save-config", cfgPath, "-max-units", "4", "-write-sample", samplePath, "-sample-size", "50")
	require.NoError(t, err)

	cfg, err := config.NewRiskConfigManagerWithEnv(func(string) string { return "" }).LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Risk.MaxUnits)

	obs, err := data.NewDataManager().LoadObservations(samplePath)
	require.NoError(t, err)
	assert.Len(t, obs, 50)
}

func TestRun_DataRootLocator(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "BTCUSDT"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "BTCUSDT", "observations.csv"), []byte(killSwitchCSV), 0644))

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{
		"-env", filepath.Join(t.TempDir(), "none.env"),
		"-data-root", root,
		"-data", filepath.Join(t.TempDir(), "missing.csv"),
		"-symbol", "btcusdt",
		"-jsonl",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(stdout.String(), "\n"))
}

func TestRun_MalformedEnvFileIsConfigError(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(envPath, []byte("RISK-MAX-UNITS=3\n"), 0644))

	_, err := runCLI(t, "-env", envPath, "-print-config")
	require.Error(t, err)
	assert.True(t, boterrors.IsConfigError(err))
}

func TestRun_ToDateCoversWholeDay(t *testing.T) {
	path := writeCSV(t, killSwitchCSV)

	out, err := runCLI(t, "-data", path, "-to", "2024-01-01", "-jsonl")
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "\n"))

	out, err = runCLI(t, "-data", path, "-to", "2024-01-01 02:00:00", "-jsonl")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestRun_CompareLimits(t *testing.T) {
	path := writeCSV(t, killSwitchCSV)

	out, err := runCLI(t, "-data", path, "-compare-limits", "0.05,0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "loss_limit_0.05")
	assert.Contains(t, out, "loss_limit_0.5")
}

func TestRun_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Bad period", []string{"-period", "soon"}},
		{"Bad date", []string{"-from", "yesterday"}},
		{"Bad limits", []string{"-compare-limits", "a,b"}},
		{"Limits with jsonl", []string{"-compare-limits", "0.1", "-jsonl"}},
		{"Negative tail", []string{"-tail", "-1"}},
		{"Missing config file", []string{"-config", "/nonexistent/risk.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRun_HelpAndVersion(t *testing.T) {
	out, err := runCLI(t, "-version")
	require.NoError(t, err)
	assert.Contains(t, out, AppName)

	out, err = runCLI(t, "-help")
	require.NoError(t, err)
	assert.Contains(t, out, "-equity-loss-limit")
}

func TestConfigParamsOnlyVisited(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := NewRiskFlags(fs)
	require.NoError(t, fs.Parse([]string{"-vol-threshold", "0.02", "-tail", "4"}))

	params := configParams(fs, flags)
	assert.Equal(t, map[string]interface{}{
		config.ParamVolThreshold: 0.02,
		config.ParamTailRows:     4,
	}, params)
}

func TestParseLimits(t *testing.T) {
	limits, err := parseLimits(" 0.05, 0.1,,0.2 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.05, 0.1, 0.2}, limits)

	_, err = parseLimits(" , ")
	assert.Error(t, err)
}
