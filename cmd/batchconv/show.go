package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/batchconv/internal/charset"
	"github.com/pdiddy/batchconv/internal/convert"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a file decoded to UTF-8",
	Long: `Show detects the charset of a file and prints its text as UTF-8 without
modifying the file. With --preview the text is also passed through the
configured conversion rule set, showing what convert would write.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("preview", false, "print the converted text instead of the decoded text")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	preview, _ := cmd.Flags().GetBool("preview")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	var conv convert.Converter
	if preview {
		if conv, err = convert.New(cfg.Convert); err != nil {
			return err
		}
	}
	return showFile(cmd.Context(), charset.NewReader(nil, logger), conv, cfg.Convert.ConfigID, args[0], os.Stdout)
}

// showFile writes the decoded text of path to w, converted with conv when
// conv is non-nil.
func showFile(ctx context.Context, r *charset.Reader, conv convert.Converter, configID, path string, w io.Writer) error {
	text, err := r.ReadAsText(ctx, path)
	if err != nil {
		return err
	}
	if conv != nil {
		if text, err = conv.Convert(text, configID); err != nil {
			return fmt.Errorf("converting %s: %w", path, err)
		}
	}
	if _, err := io.WriteString(w, text); err != nil {
		return err
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
