// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/batchconv/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded conversion runs",
	Long: `History lists runs recorded with convert --history. Records are kept in
the SQLite database at history.path.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-file outcomes of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write recent runs and their outcomes as YAML",
	RunE:  runHistoryExport,
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs")
	historyExportCmd.Flags().Int("limit", 20, "maximum number of runs")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded.")
		return nil
	}
	fmt.Fprintln(os.Stdout, renderRuns(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Outcomes(cmd.Context(), id)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no outcomes recorded for run %s", id)
	}

	fmt.Fprintln(os.Stdout, renderEntries(entries))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.ExportYAML(cmd.Context(), os.Stdout, limit)
}
