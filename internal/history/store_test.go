// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/batchconv/internal/logging"
	"github.com/pdiddy/batchconv/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndQueryRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	older := types.RunResult{ID: uuid.New(), ConfigID: "s2t", Started: time.Now().Add(-time.Hour)}
	newer := types.RunResult{ID: uuid.New(), ConfigID: "t2s", OutputDir: "/out", Started: time.Now()}
	require.NoError(t, s.RecordRun(ctx, older))
	require.NoError(t, s.RecordRun(ctx, newer))

	newer.Converted, newer.Failed, newer.Waves = 3, 1, 2
	newer.Finished = newer.Started.Add(time.Second)
	require.NoError(t, s.RecordRun(ctx, newer), "second record updates the row")

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, "/out", runs[0].OutputDir)
	assert.Equal(t, 3, runs[0].Converted)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, time.Second, runs[0].Elapsed())
	assert.Equal(t, older.ID, runs[1].ID)
	assert.True(t, runs[1].Finished.IsZero())

	limited, err := s.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecorder(t *testing.T) {
	s := testStore(t)
	rec := NewRecorder(s, logging.Discard())

	res := types.RunResult{ID: uuid.New(), ConfigID: "s2t", Started: time.Now()}
	rec.OnRunStart(res)
	rec.OnWaveStart(1, 2)

	ok := types.Outcome{Item: types.NewWorkItem("a.txt"), Success: true, OutputPath: "a.txt", Charset: "Big5", Duration: 15 * time.Millisecond}
	bad := types.Outcome{Item: types.NewWorkItem("b.txt"), Message: "charset detection failed for b.txt", Err: errors.New("x")}
	rec.OnOutcome(ok)
	rec.OnOutcome(bad)

	res.Converted, res.Failed, res.Finished = 1, 1, time.Now()
	rec.OnRunDone(res)

	entries, err := s.Outcomes(context.Background(), res.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ok.Item.ID, entries[0].ItemID)
	assert.True(t, entries[0].Success)
	assert.Equal(t, "Big5", entries[0].Charset)
	assert.Equal(t, 15*time.Millisecond, entries[0].Duration)
	assert.False(t, entries[1].Success)
	assert.Equal(t, bad.Message, entries[1].Message)

	runs, err := s.Runs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Converted)
	assert.False(t, runs[0].Finished.IsZero())
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res := types.RunResult{ID: uuid.New(), ConfigID: "s2t", Started: time.Now()}
	require.NoError(t, s.RecordRun(ctx, res))
	require.NoError(t, s.RecordOutcome(ctx, res.ID, types.Outcome{Item: types.NewWorkItem("a.txt"), Success: true}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, 10))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	outcomes, ok := decoded[0]["outcomes"].([]any)
	require.True(t, ok)
	assert.Len(t, outcomes, 1)
}
