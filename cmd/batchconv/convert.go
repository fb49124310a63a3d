package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/batchconv/internal/charset"
	"github.com/pdiddy/batchconv/internal/convert"
	"github.com/pdiddy/batchconv/internal/engine"
	"github.com/pdiddy/batchconv/internal/history"
	"github.com/pdiddy/batchconv/internal/worklist"
	"github.com/pdiddy/batchconv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert text files with a conversion rule set",
	Long: `Convert detects the charset of each file, converts its text with the rule
set named by --config-id, and writes the result as UTF-8. Without --output-dir
files are overwritten in place; with it, each file is written to the output
directory under its base name.

With --stdin, further paths are read one per line from standard input while
the conversion is running.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("config-id", "c", "", "conversion rule set (default s2t)")
	convertCmd.Flags().StringP("output-dir", "o", "", "write converted files here instead of in place")
	convertCmd.Flags().Int("concurrency", 0, "worker count (default: CPUs minus 2, at least 1)")
	convertCmd.Flags().String("backend", "", "converter backend: rules or opencc")
	convertCmd.Flags().String("rules-dir", "", "directory of <config-id>.yaml rule sets")
	convertCmd.Flags().String("opencc-bin", "", "opencc executable for the opencc backend")
	convertCmd.Flags().String("lock-file", "", "lock file shared by concurrent batchconv processes")
	convertCmd.Flags().Bool("history", false, "record the run in the history database")
	convertCmd.Flags().Bool("stdin", false, "also read file paths from standard input")
	convertCmd.Flags().Bool("no-progress", false, "print one line per file instead of a progress bar")

	viper.BindPFlag("convert.config_id", convertCmd.Flags().Lookup("config-id"))
	viper.BindPFlag("convert.output_dir", convertCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("convert.backend", convertCmd.Flags().Lookup("backend"))
	viper.BindPFlag("convert.rules_dir", convertCmd.Flags().Lookup("rules-dir"))
	viper.BindPFlag("convert.opencc_bin", convertCmd.Flags().Lookup("opencc-bin"))
	viper.BindPFlag("engine.concurrency", convertCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("engine.lock_file", convertCmd.Flags().Lookup("lock-file"))
	viper.BindPFlag("history.enabled", convertCmd.Flags().Lookup("history"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	readStdin, _ := cmd.Flags().GetBool("stdin")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if len(args) == 0 && !readStdin {
		return fmt.Errorf("provide one or more files, or --stdin")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	conv, err := convert.New(cfg.Convert)
	if err != nil {
		return err
	}

	failures := &failureCollector{}
	observers := []engine.Observer{failures, newProgress(os.Stdout, os.Stderr, !noProgress)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		observers = append(observers, history.NewRecorder(store, logger))
	}

	eng := engine.New(charset.NewReader(nil, logger), conv, engine.Options{
		Concurrency: cfg.Engine.Concurrency,
		LockFile:    cfg.Engine.LockFile,
		Logger:      logger,
		Observer:    engine.Observers(observers...),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list := worklist.New()
	list.Append(args...)

	inputDone := make(chan struct{})
	if readStdin {
		go func() {
			defer close(inputDone)
			if err := feedPaths(ctx, cmd.InOrStdin(), list); err != nil {
				logger.Warn("reading paths from stdin", "error", err)
			}
		}()
	} else {
		close(inputDone)
	}

	total, err := drain(ctx, eng, list, cfg.Convert, inputDone)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		total.Converted, total.Failed, total.Total())
	if len(failures.items) > 0 {
		fmt.Fprintln(os.Stdout, renderFailures(failures.items))
	}
	if total.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", total.Failed)
	}
	return nil
}

// drain runs the engine until the list is empty and no more input will
// arrive. Failed items are moved out of the list after each run so that a
// later run only sees newly added files.
func drain(ctx context.Context, eng *engine.Engine, list *worklist.List, cfg types.ConvertConfig, inputDone <-chan struct{}) (types.RunResult, error) {
	changes, unsubscribe := list.Subscribe()
	defer unsubscribe()

	var total types.RunResult
	for {
		res, err := eng.Run(ctx, list, cfg.ConfigID, cfg.OutputDir)
		if err != nil {
			return total, err
		}
		if res.Ignored {
			return total, fmt.Errorf("another conversion run is active")
		}
		total.Waves += res.Waves
		total.Converted += res.Converted
		total.Failed += res.Failed
		total.Stale += res.Stale

		for _, it := range list.Snapshot() {
			if it.Failed() {
				list.Remove(it.ID)
			}
		}

		more, err := waitForWork(ctx, list, changes, inputDone)
		if err != nil {
			return total, err
		}
		if !more {
			return total, nil
		}
	}
}

// waitForWork blocks until the list is non-empty or input has ended. It
// reports whether there is work to do.
func waitForWork(ctx context.Context, list *worklist.List, changes <-chan struct{}, inputDone <-chan struct{}) (bool, error) {
	for {
		if list.Len() > 0 {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-inputDone:
			return list.Len() > 0, nil
		case <-changes:
		}
	}
}

// feedPaths appends one item per non-empty line of r.
func feedPaths(ctx context.Context, r io.Reader, list *worklist.List) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p := strings.TrimSpace(sc.Text()); p != "" {
			list.Append(p)
		}
	}
	return sc.Err()
}

// failureCollector keeps failed outcomes for the end-of-run table.
type failureCollector struct {
	engine.NopObserver
	items []types.Outcome
}

func (f *failureCollector) OnOutcome(o types.Outcome) {
	if !o.Success {
		f.items = append(f.items, o)
	}
}
