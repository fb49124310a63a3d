package types

// EngineConfig holds settings for the batch conversion engine.
type EngineConfig struct {
	// Concurrency is the worker permit count. Zero or less selects
	// max(1, GOMAXPROCS-2).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// LockFile, when set, is a lock file that a run must also hold, so that
	// only one run is active across processes sharing the file.
	LockFile string `json:"lock_file,omitempty" yaml:"lock_file,omitempty" mapstructure:"lock_file"`
}

// ConvertBackend identifies the converter used for non-identity config ids.
type ConvertBackend string

const (
	BackendRules  ConvertBackend = "rules"
	BackendOpenCC ConvertBackend = "opencc"
)

// ConvertConfig holds settings for the text transform step.
type ConvertConfig struct {
	// ConfigID names the conversion rule set (e.g. "s2t"). It is passed
	// through to the backend unmodified.
	ConfigID string `json:"config_id" yaml:"config_id" mapstructure:"config_id"`

	// OutputDir is the directory for converted files. Empty means the
	// source files are overwritten in place.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" mapstructure:"output_dir"`

	// Backend selects the converter: rules or opencc.
	Backend ConvertBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// RulesDir holds <config_id>.yaml rule sets for the rules backend.
	RulesDir string `json:"rules_dir" yaml:"rules_dir" mapstructure:"rules_dir"`

	// OpenCCBin is the opencc executable used by the opencc backend.
	OpenCCBin string `json:"opencc_bin" yaml:"opencc_bin" mapstructure:"opencc_bin"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine" mapstructure:"engine"`
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}

// DefaultConfig returns the settings used when no config file, environment
// variable, or flag overrides them.
func DefaultConfig() Config {
	return Config{
		Convert: ConvertConfig{
			ConfigID:  "s2t",
			Backend:   BackendRules,
			RulesDir:  "rules",
			OpenCCBin: "opencc",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Path: ".batchconv/history.db",
		},
	}
}
