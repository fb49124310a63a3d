// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrCharsetNotDetected is returned by detectors that find no usable signal
// in the input.
var ErrCharsetNotDetected = errors.New("no charset determined")

// ErrBinaryContent marks input that carries control bytes no text file
// contains, such as NUL.
var ErrBinaryContent = errors.New("content is binary")

// IOError reports a failed open, read, or write of an item's file.
type IOError struct {
	Op   string // "read", "write", "stat", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, filepath.Base(e.Path), e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CharsetDetectionError reports that no charset could be determined for a file.
type CharsetDetectionError struct {
	Path string
	Err  error
}

func (e *CharsetDetectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("charset detection failed for %s", filepath.Base(e.Path))
	}
	return fmt.Sprintf("charset detection failed for %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *CharsetDetectionError) Unwrap() error { return e.Err }

// CharsetDecodingError reports malformed byte sequences under the detected charset.
type CharsetDecodingError struct {
	Path    string
	Charset string
	// Offset is the byte offset of the first malformed sequence, or -1 when
	// it is not known.
	Offset int
}

func (e *CharsetDecodingError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("decoding %s as %s: malformed byte sequence", filepath.Base(e.Path), e.Charset)
	}
	return fmt.Sprintf("decoding %s as %s: malformed byte sequence at offset %d", filepath.Base(e.Path), e.Charset, e.Offset)
}

// UnsupportedCharsetError reports a detected charset with no available decoder.
type UnsupportedCharsetError struct {
	Path    string
	Charset string
}

func (e *UnsupportedCharsetError) Error() string {
	return fmt.Sprintf("unsupported charset %q for %s", e.Charset, filepath.Base(e.Path))
}

// ConversionError wraps a failure returned by the text converter.
type ConversionError struct {
	Path     string
	ConfigID string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s with %q: %v", filepath.Base(e.Path), e.ConfigID, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
