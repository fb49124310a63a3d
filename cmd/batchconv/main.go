// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the batchconv CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/batchconv/internal/logging"
	"github.com/pdiddy/batchconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the batchconv CLI.
var rootCmd = &cobra.Command{
	Use:   "batchconv",
	Short: "Detect, convert, and rewrite batches of text files",
	Long: `batchconv converts batches of text files of unknown encoding. Each file's
charset is detected (Big5 and GB18030 are always supported), the decoded text
is passed through a conversion rule set such as s2t, and the result is written
back as UTF-8, either in place or into an output directory.

Files are processed concurrently; failures are reported per file and never
stop the rest of the batch.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./batchconv.yaml or ~/.config/batchconv/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("batchconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "batchconv"))
		}
	}

	setDefaults(types.DefaultConfig())

	viper.SetEnvPrefix("BATCHCONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that environment variables
// and config files can override it.
func setDefaults(d types.Config) {
	viper.SetDefault("engine.concurrency", d.Engine.Concurrency)
	viper.SetDefault("engine.lock_file", d.Engine.LockFile)
	viper.SetDefault("convert.config_id", d.Convert.ConfigID)
	viper.SetDefault("convert.output_dir", d.Convert.OutputDir)
	viper.SetDefault("convert.backend", string(d.Convert.Backend))
	viper.SetDefault("convert.rules_dir", d.Convert.RulesDir)
	viper.SetDefault("convert.opencc_bin", d.Convert.OpenCCBin)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("history.enabled", d.History.Enabled)
	viper.SetDefault("history.path", d.History.Path)
}

// loadConfig decodes the merged flag, environment, file, and default
// settings.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg.
func newLogger(cfg types.Config) (*slog.Logger, error) {
	return logging.New(cfg.Log, os.Stderr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
