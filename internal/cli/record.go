package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"logonlog/internal/collect"
	"logonlog/internal/core"
	"logonlog/internal/ledger"
	"logonlog/internal/logger"
	"logonlog/internal/metrics"
	"logonlog/internal/parse"
	"logonlog/internal/period"
	"logonlog/internal/record"
	"logonlog/internal/schema"
	"logonlog/internal/winutil"
)

var (
	parallel       int
	collectTimeout time.Duration
	shellBinary    string
)

// recordCmd represents the record command.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the current logon into today's workstation and user logs",
	Long: `The record command collects identity, hardware and operating system facts,
classifies the current time into a school period, and appends one record
to today's workstation log and today's user log.`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent collectors, 1-64 (overrides config)")
	recordCmd.Flags().DurationVar(&collectTimeout, "collect-timeout", 0, "per-collector timeout (overrides config)")
	recordCmd.Flags().StringVar(&shellBinary, "shell", winutil.DefaultShell(), "PowerShell binary used for directory and hardware queries")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Get(ctx)

	if cmd.Flags().Changed("parallel") {
		if err := parse.ValidateParallel(parallel); err != nil {
			return err
		}
		cfg.Parallel = parallel
	}
	if cmd.Flags().Changed("collect-timeout") {
		if collectTimeout <= 0 {
			return fmt.Errorf("collect-timeout must be positive")
		}
		cfg.CollectTimeout = collectTimeout
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		return err
	}
	classifier, err := period.NewClassifier(cfg.Periods)
	if err != nil {
		return err
	}

	shell := winutil.NewPowerShell(shellBinary)
	defer shell.Close()

	run := core.NewRun(cfg.Parallel, cfg.CollectTimeout, core.SystemClock{}, log)
	run.Register(collect.NewIdentityCollector(shell))
	run.Register(collect.NewHardwareCollector(shell))
	run.Register(collect.NewOSCollector())

	log.Infow("Collecting logon facts", "collectors", run.Names(), "parallel", cfg.Parallel, "timeout", cfg.CollectTimeout)
	facts := &collect.Facts{}
	results, err := run.CollectAll(ctx, facts)
	if err != nil {
		return fmt.Errorf("failed to collect logon facts: %w", err)
	}

	now := time.Now().In(loc)
	p, err := classifier.Classify(now)
	if err != nil {
		// A gap in a configured period table still records the logon.
		log.Warnw("Logon outside every period", "error", err)
	}

	id, hw, osInfo := facts.Snapshot()
	rec := record.New(id, hw, osInfo, now, p)

	m := metrics.New()
	engine := ledger.New(loc, log, m)
	output := schema.NewRecordOutput(rec, cfg.Parallel, cfg.CollectTimeout, run.Names(), results, now)

	appendErr := appendBoth(ctx, engine, rec, output)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile, now); err != nil {
			log.Warnw("Failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if err := printJSON(cmd.OutOrStdout(), output); err != nil {
		return errors.Join(appendErr, err)
	}
	return appendErr
}

// appendBoth writes rec to the workstation and user logs concurrently. A
// failure on one does not stop the other; both errors are returned.
func appendBoth(ctx context.Context, engine *ledger.Engine, rec record.Logon, output *schema.RecordOutput) error {
	targets := []struct {
		root   string
		schema record.Schema
	}{
		{cfg.WorkstationRoot, record.Workstation},
		{cfg.UserRoot, record.User},
	}

	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		i, target := i, target
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := ledger.DailyName(target.schema.Name(), rec.Time)
			if err := engine.Append(ctx, target.root, name, rec, target.schema); err != nil {
				errs[i] = fmt.Errorf("failed to append %s log: %w", target.schema.Name(), err)
			}
		}()
	}
	wg.Wait()

	for i, target := range targets {
		path := ledger.Path(target.root, ledger.DailyName(target.schema.Name(), rec.Time))
		output.AddAppend(target.schema.Name(), path, errs[i])
	}
	return errors.Join(errs...)
}
