// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"time"

	"github.com/google/uuid"
)

// WorkItem is one file queued for conversion. Items are identified by ID,
// never by path: appending the same path twice yields two distinct items.
type WorkItem struct {
	// ID is the handle the work list and the engine use to track the item.
	ID uuid.UUID `json:"id" yaml:"id"`

	// Path is the source file path as supplied by the caller.
	Path string `json:"path" yaml:"path"`

	// Error holds the message of the most recent failed attempt, or is empty.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// AddedAt records when the item was appended to the list.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// NewWorkItem returns an item for path with a fresh identity.
func NewWorkItem(path string) WorkItem {
	return WorkItem{
		ID:      uuid.New(),
		Path:    path,
		AddedAt: time.Now().UTC(),
	}
}

// Failed reports whether the item carries an error annotation.
func (w WorkItem) Failed() bool {
	return w.Error != ""
}

// Outcome is the result of processing one work item. A worker produces it
// and the engine's reporter consumes it exactly once.
type Outcome struct {
	Item    WorkItem `json:"item" yaml:"item"`
	Success bool     `json:"success" yaml:"success"`

	// Message is the human-readable failure text; empty on success.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Err is the underlying failure. It is not serialized.
	Err error `json:"-" yaml:"-"`

	// OutputPath is where the converted text was (or would have been) written.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Charset is the detected source charset, when detection got that far.
	Charset string `json:"charset,omitempty" yaml:"charset,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// RunResult summarizes one engine run.
type RunResult struct {
	ID uuid.UUID `json:"id" yaml:"id"`

	// Ignored is set when the run did not start because another run was
	// already active.
	Ignored bool `json:"ignored" yaml:"ignored"`

	ConfigID  string `json:"config_id" yaml:"config_id"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	Waves     int `json:"waves" yaml:"waves"`
	Converted int `json:"converted" yaml:"converted"`
	Failed    int `json:"failed" yaml:"failed"`

	// Stale counts workers that found their item already gone from the list.
	Stale int `json:"stale" yaml:"stale"`

	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`
}

// Total returns the number of items that produced an outcome.
func (r RunResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any item failed.
func (r RunResult) HasFailures() bool {
	return r.Failed > 0
}

// Elapsed returns the wall-clock duration of the run.
func (r RunResult) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
