package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/batchconv/internal/charset"
)

var detectCmd = &cobra.Command{
	Use:   "detect <files...>",
	Short: "Report the detected charset of files without converting them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	reader := charset.NewReader(nil, logger)

	rows := make([]detection, 0, len(args))
	failed := 0
	for _, path := range args {
		d, err := reader.Detect(cmd.Context(), path)
		if err != nil {
			failed++
		}
		rows = append(rows, detection{path: path, det: d, err: err})
	}

	fmt.Fprintln(os.Stdout, renderDetections(rows))
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be detected", failed)
	}
	return nil
}
