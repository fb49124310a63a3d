// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package charset

import (
	"bytes"
	"errors"

	"github.com/saintfish/chardet"

	"github.com/pdiddy/batchconv/pkg/types"
)

// Detection is a detector's best guess for a byte stream.
type Detection struct {
	// Charset is the detected label as reported by the detector
	// (e.g. "Big5", "GB-18030", "UTF-8").
	Charset string

	// Confidence is a detector-specific score in [0, 100]. It is reported
	// for diagnostics only; decoding never branches on it.
	Confidence int

	// Language is the detector's language guess, if any.
	Language string

	// BOM is set when the charset was decided by a byte-order mark.
	BOM bool
}

// Detector guesses the charset of a byte stream. Implementations return
// an error wrapping types.ErrCharsetNotDetected when the input carries no
// usable signal.
type Detector interface {
	Detect(data []byte) (Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(data []byte) (Detection, error)

// Detect calls f(data).
func (f DetectorFunc) Detect(data []byte) (Detection, error) { return f(data) }

// ChardetDetector detects charsets with the ICU-derived chardet text
// detector.
type ChardetDetector struct {
	det *chardet.Detector
}

// NewChardetDetector returns the default detector.
func NewChardetDetector() *ChardetDetector {
	return &ChardetDetector{det: chardet.NewTextDetector()}
}

// Detect returns the best-scoring charset for data.
func (c *ChardetDetector) Detect(data []byte) (Detection, error) {
	res, err := c.det.DetectBest(data)
	if err != nil {
		if errors.Is(err, chardet.NotDetectedError) {
			return Detection{}, types.ErrCharsetNotDetected
		}
		return Detection{}, err
	}
	if res == nil || res.Charset == "" {
		return Detection{}, types.ErrCharsetNotDetected
	}
	return Detection{
		Charset:    res.Charset,
		Confidence: res.Confidence,
		Language:   res.Language,
	}, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffBOM reports the charset implied by a leading byte-order mark and
// the length of the mark.
func sniffBOM(data []byte) (label string, n int) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return labelUTF8, len(bomUTF8)
	case bytes.HasPrefix(data, bomUTF16LE):
		return labelUTF16LE, len(bomUTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE):
		return labelUTF16BE, len(bomUTF16BE)
	}
	return "", 0
}
