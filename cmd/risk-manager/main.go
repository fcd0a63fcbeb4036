package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/cmd/common"
	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/internal/logger"
	"github.com/ducminhle1904/crypto-risk-manager/internal/monitoring"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/config"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/reporting"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

const (
	AppName = "Risk Manager"

	sampleSource    = "sample"
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		common.Error("%v", err)
		os.Exit(1)
	}
}

// run executes one replay with the given arguments and output streams
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, flag.ErrHelp) {
			monitoring.RecordError(errorType(err))
		}
	}()

	fs := flag.NewFlagSet("risk-manager", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := NewRiskFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if common.CheckHelpAndVersion(stdout, fs, flags.Common, newUsageFormatter()) {
		return nil
	}

	if err := ValidateRiskFlags(flags); err != nil {
		return err
	}

	cli := common.NewLoggerWithWriters(stdout, stderr)
	common.SetupLogger(cli, flags.Common)
	if *flags.JSONL || *flags.PrintConfig {
		// stdout carries machine-readable output only
		cli.SetSilentMode(true)
	}

	if err := common.NewEnvLoader(cli).LoadEnvFile(*flags.Common.EnvFile); err != nil {
		return boterrors.NewConfigurationError("cli", "LoadEnvFile", "invalid environment file").
			WithContext("path", *flags.Common.EnvFile).
			WithUnderlying(err)
	}

	cfgManager := config.NewRiskConfigManager()
	cfg, err := cfgManager.LoadConfig(*flags.ConfigFile, configParams(fs, flags))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if *flags.PrintConfig {
		return reporting.PrintJSON(stdout, cfg.ToNested())
	}

	cli.Header(fmt.Sprintf("%s v%s", AppName, common.ProjectVersion))

	if *flags.SaveConfig != "" {
		if err := cfgManager.SaveConfig(cfg, *flags.SaveConfig); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		cli.Success("Effective configuration saved to %s", *flags.SaveConfig)
	}

	if *flags.WriteSample != "" {
		return writeSample(cli, flags)
	}

	dm := data.NewDataManager()
	obs, source, err := loadObservations(cli, dm, cfg, flags)
	if err != nil {
		return err
	}
	cli.Info("Loaded %d observations from %s", len(obs), source)

	runner := backtest.NewRunner(cfg.Symbol, cfg.Risk, monitoring.NewRecorder())

	var server *monitoring.Server
	if *flags.MetricsAddr != "" {
		health := monitoring.NewHealthChecker()
		runner.AddObserver(health)

		server, err = monitoring.StartServer(*flags.MetricsAddr, monitoring.NewMux(health))
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		cli.Info("Serving metrics on http://%s/metrics", server.Addr())
	}

	if *flags.LogDir != "" && !*flags.Common.ConsoleOnly {
		fileLog, err := logger.NewLogger(*flags.LogDir, cfg.Symbol)
		if err != nil {
			return err
		}
		defer fileLog.Close()

		fileLog.SetLogDecisions(*flags.LogEvery)
		fileLog.LogConfig(cfg.Risk)
		fileLog.Info("Replaying %d observations from %s", len(obs), source)
		runner.AddObserver(fileLog)
		cli.Info("Session log: %s", fileLog.GetLogPath())
	}

	results := runner.Run(obs)
	cli.Success("Processed %d observations in %s", len(results.Records), common.FormatDuration(results.Duration))
	if trip := results.Summary.Trip; trip != nil {
		cli.Warn("Kill switch tripped at %s: equity %.2f fell to the floor %.2f (limit %s)",
			trip.Time.Format(time.RFC3339), trip.Equity, trip.Floor, common.FormatPercent(cfg.Risk.EquityLossLimit, 1))
	}

	reporter := reporting.NewReporterWithConsole(newConsoleReporter(stdout))

	if *flags.JSONL {
		if err := reporting.WriteDecisionsJSONL(stdout, results.Records); err != nil {
			return err
		}
	} else {
		reporter.PrintConfig(cfg.Risk)
		reporter.PrintDecisionTail(results, cfg.TailRows)
		reporter.PrintSummary(results.Summary)
	}

	if err := exportResults(cli, reporter, results, flags); err != nil {
		return err
	}

	if *flags.CompareLimits != "" {
		if err := compareLimits(ctx, cli, reporter, cfg, obs, flags); err != nil {
			return err
		}
	}

	if server != nil {
		cli.Info("Press Ctrl+C to stop the metrics server")
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}

	return nil
}

// loadObservations resolves the input source and applies the time filters
func loadObservations(cli *common.Logger, dm *data.DataManager, cfg *config.RunConfig, flags *RiskFlags) ([]types.Observation, string, error) {
	source := cfg.DataFile
	if !common.FileExists(source) {
		if found := dm.FindDataFile(*flags.Common.DataRoot, cfg.Symbol); found != "" {
			cli.Debug("Located %s for %s", found, cfg.Symbol)
			source = found
		}
	}

	var (
		obs []types.Observation
		err error
	)
	if !common.FileExists(source) && *flags.Sample {
		cli.Warn("Data file %s not found, generating %d sample observations (seed %d)", source, *flags.SampleSize, *flags.SampleSeed)
		sample := data.NewSampleProvider(*flags.SampleSeed, *flags.SampleSize)
		obs, err = data.NewDataManagerWithProvider(sample).LoadObservations(sampleSource)
		source = sampleSource
	} else {
		obs, err = dm.LoadObservations(source)
	}
	if err != nil {
		return nil, source, err
	}

	if *flags.Period != "" {
		period, _ := data.ParseTrailingPeriod(*flags.Period)
		obs = dm.FilterDataByPeriod(obs, period)
		cli.Info("Limited to trailing %s: %d observations", *flags.Period, len(obs))
	}

	if *flags.From != "" || *flags.To != "" {
		var from, to time.Time
		if *flags.From != "" {
			from, _ = data.ParseDate(*flags.From)
		}
		if *flags.To != "" {
			to, _ = data.ParseDateEnd(*flags.To)
		}
		obs = dm.FilterDataByDateRange(obs, from, to)
		cli.Info("Limited to date range: %d observations", len(obs))
	}

	return obs, source, nil
}

// writeSample generates sample observations to a file for later runs
func writeSample(cli *common.Logger, flags *RiskFlags) error {
	path := *flags.WriteSample
	obs := data.NewSampleProvider(*flags.SampleSeed, *flags.SampleSize).Generate()
	if err := data.SaveObservations(path, obs); err != nil {
		return err
	}

	cli.Success("Wrote %d sample observations to %s", len(obs), path)
	return nil
}

// exportResults writes the decision export and summary files
func exportResults(cli *common.Logger, reporter *reporting.DefaultReporter, results *backtest.Results, flags *RiskFlags) error {
	if *flags.Out == "" && *flags.SummaryOut == "" {
		return nil
	}
	if *flags.Common.ConsoleOnly {
		cli.Warn("Console-only mode: skipping file output")
		return nil
	}

	outputDir := reporter.GetDefaultOutputDir(results.Symbol)

	if *flags.Out != "" {
		path := common.ResolvePath(*flags.Out, outputDir, data.ExtCSV)
		if err := reporter.ExportDecisions(results, path); err != nil {
			return fmt.Errorf("failed to export decisions: %w", err)
		}
		cli.Success("Decisions saved to %s", path)
	}

	if *flags.SummaryOut != "" {
		path := common.ResolvePath(*flags.SummaryOut, outputDir, ".json")
		if err := reporter.WriteSummaryJSON(results.Summary, path); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		cli.Success("Summary saved to %s", path)
	}

	return nil
}

// compareLimits replays the stream once per equity loss limit in parallel
func compareLimits(ctx context.Context, cli *common.Logger, reporter *reporting.DefaultReporter, cfg *config.RunConfig, obs []types.Observation, flags *RiskFlags) error {
	limits, err := parseLimits(*flags.CompareLimits)
	if err != nil {
		return err
	}

	jobs := backtest.LossLimitScenarios(cfg.Risk, limits)
	for _, job := range jobs {
		if err := config.ValidateRiskConfig(job.Config); err != nil {
			return fmt.Errorf("scenario %s: %w", job.ID, err)
		}
	}

	cli.Progress("Comparing %d equity loss limits with %d workers", len(jobs), *flags.Workers)
	results, err := backtest.CompareScenarios(ctx, cfg.Symbol, obs, jobs, *flags.Workers)
	if err != nil {
		return err
	}

	reporter.PrintScenarioComparison(results)
	return nil
}

func newConsoleReporter(w io.Writer) *reporting.DefaultConsoleReporter {
	if w == os.Stdout {
		return reporting.NewDefaultConsoleReporter()
	}
	return reporting.NewConsoleReporterWithWriter(w)
}

// errorType labels an error for the errors_total metric
func errorType(err error) string {
	if category, ok := boterrors.CategoryOf(err); ok {
		return string(category)
	}
	return "unknown"
}
