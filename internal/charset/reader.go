// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package charset reads text files of unknown encoding and returns their
// content as UTF-8. The charset is taken from a byte-order mark when one is
// present and otherwise guessed by a Detector. Big5 and GB18030 are always
// supported; any other label is resolved through the x/text encoding
// indexes.
package charset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/pdiddy/batchconv/pkg/types"
)

// Text is a decoded file.
type Text struct {
	Content    string
	Charset    string
	Confidence int
	HadBOM     bool
}

// Reader detects and decodes text files. It is safe for concurrent use if
// its Detector is.
type Reader struct {
	detector Detector
	logger   *slog.Logger
}

// NewReader returns a Reader using d for detection. A nil detector selects
// the chardet-based default; a nil logger discards diagnostics.
func NewReader(d Detector, logger *slog.Logger) *Reader {
	if d == nil {
		d = NewChardetDetector()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{detector: d, logger: logger}
}

// ReadAsText returns the content of path decoded to UTF-8.
func (r *Reader) ReadAsText(ctx context.Context, path string) (string, error) {
	t, err := r.Read(ctx, path)
	if err != nil {
		return "", err
	}
	return t.Content, nil
}

// Read returns the decoded content of path along with the charset that was
// used. Failures are returned as *types.IOError,
// *types.CharsetDetectionError, *types.CharsetDecodingError, or
// *types.UnsupportedCharsetError.
func (r *Reader) Read(ctx context.Context, path string) (Text, error) {
	data, err := readFile(ctx, path)
	if err != nil {
		return Text{}, err
	}

	det, body, err := r.detect(path, data)
	if err != nil {
		return Text{}, err
	}

	content, err := Decode(path, body, det.Charset)
	if err != nil {
		return Text{}, err
	}
	return Text{
		Content:    content,
		Charset:    Canonical(det.Charset),
		Confidence: det.Confidence,
		HadBOM:     det.BOM,
	}, nil
}

// Detect reports the charset of path without decoding it.
func (r *Reader) Detect(ctx context.Context, path string) (Detection, error) {
	data, err := readFile(ctx, path)
	if err != nil {
		return Detection{}, err
	}
	det, _, err := r.detect(path, data)
	return det, err
}

// detect decides the charset of data and returns the bytes that remain to
// be decoded (data without any byte-order mark).
func (r *Reader) detect(path string, data []byte) (Detection, []byte, error) {
	if len(data) == 0 {
		return Detection{Charset: labelUTF8, Confidence: 100}, data, nil
	}
	if label, n := sniffBOM(data); n > 0 {
		r.logger.Debug("charset from byte-order mark", "path", path, "charset", label)
		return Detection{Charset: label, Confidence: 100, BOM: true}, data[n:], nil
	}

	if i := binaryOffset(data); i >= 0 {
		r.logger.Debug("binary content", "path", path, "offset", i, "byte", data[i])
		return Detection{}, nil, &types.CharsetDetectionError{Path: path, Err: types.ErrBinaryContent}
	}

	det, err := r.detector.Detect(data)
	if err != nil {
		r.logger.Debug("charset detection failed", "path", path, "error", err)
		if errors.Is(err, types.ErrCharsetNotDetected) {
			return Detection{}, nil, &types.CharsetDetectionError{Path: path}
		}
		return Detection{}, nil, &types.CharsetDetectionError{Path: path, Err: err}
	}
	if det.Charset == "" {
		return Detection{}, nil, &types.CharsetDetectionError{Path: path}
	}
	r.logger.Debug("charset detected", "path", path, "charset", det.Charset, "confidence", det.Confidence)
	return det, data, nil
}

// binaryOffset returns the offset of the first C0 control byte that plain
// text does not use, or -1. Tab, newline, vertical tab, form feed, carriage
// return and escape (ISO-2022 shifts) are allowed. Only BOM-less input is
// checked; UTF-16 without a BOM is treated as binary.
func binaryOffset(data []byte) int {
	for i, b := range data {
		if b >= 0x20 {
			continue
		}
		switch b {
		case '\t', '\n', '\v', '\f', '\r', 0x1b:
			continue
		}
		return i
	}
	return -1
}

// readFile reads path in full after checking ctx.
func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}
