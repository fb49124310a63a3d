// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/batchconv/pkg/types"
)

// OutputPath returns where the converted form of src is written: src
// itself when outputDir is empty, else outputDir joined with src's base name.
func OutputPath(src, outputDir string) string {
	if outputDir == "" {
		return src
	}
	return filepath.Join(outputDir, filepath.Base(src))
}

// process reads, converts, and writes one item. The second result is false
// when the run was cancelled mid-item; no outcome is reported then and the
// item is left untouched.
func (e *Engine) process(ctx context.Context, item types.WorkItem, configID, outputDir string) (types.Outcome, bool) {
	start := time.Now()
	out := types.Outcome{
		Item:       item,
		OutputPath: OutputPath(item.Path, outputDir),
	}

	err := func() error {
		text, err := e.reader.Read(ctx, item.Path)
		if err != nil {
			return err
		}
		out.Charset = text.Charset

		converted, err := e.convert(text.Content, item.Path, configID)
		if err != nil {
			return err
		}
		return writeText(ctx, out.OutputPath, converted)
	}()
	out.Duration = time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return out, false
		}
		out.Err = err
		out.Message = err.Error()
		return out, true
	}
	out.Success = true
	return out, true
}

// convert calls the converter, turning both errors and panics into
// *types.ConversionError.
func (e *Engine) convert(text, path, configID string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.ConversionError{Path: path, ConfigID: configID, Err: fmt.Errorf("converter panic: %v", r)}
		}
	}()
	result, err = e.conv.Convert(text, configID)
	if err != nil {
		return "", &types.ConversionError{Path: path, ConfigID: configID, Err: err}
	}
	return result, nil
}

// writeText writes text as UTF-8 without a byte-order mark, replacing any
// existing file at path. It writes to a temp file in the same directory
// and renames it into place; an existing file keeps its permission bits.
func writeText(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		if !fi.Mode().IsRegular() {
			return &types.IOError{Op: "write", Path: path, Err: errors.New("not a regular file")}
		}
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".batchconv-*.tmp")
	if err != nil {
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.WriteString(text)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "write", Path: path, Err: writeErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "write", Path: path, Err: closeErr}
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
