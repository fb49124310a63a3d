// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pdiddy/batchconv/pkg/types"
)

// Recorder is an engine observer that writes every run and outcome to a
// Store. Write failures are logged and otherwise ignored so that a broken
// history database never affects the conversion itself.
type Recorder struct {
	store  *Store
	logger *slog.Logger
	runID  uuid.UUID
}

// NewRecorder returns a recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

func (r *Recorder) OnRunStart(res types.RunResult) {
	r.runID = res.ID
	if err := r.store.RecordRun(context.Background(), res); err != nil {
		r.logger.Warn("history: recording run start", "error", err)
	}
}

func (r *Recorder) OnWaveStart(int, int) {}

func (r *Recorder) OnOutcome(o types.Outcome) {
	if err := r.store.RecordOutcome(context.Background(), r.runID, o); err != nil {
		r.logger.Warn("history: recording outcome", "path", o.Item.Path, "error", err)
	}
}

func (r *Recorder) OnRunDone(res types.RunResult) {
	if err := r.store.RecordRun(context.Background(), res); err != nil {
		r.logger.Warn("history: recording run result", "error", err)
	}
}
