// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package charset

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/pdiddy/batchconv/pkg/types"
)

// fixedDetector always reports the same label.
func fixedDetector(label string) Detector {
	return DetectorFunc(func([]byte) (Detection, error) {
		return Detection{Charset: label, Confidence: 80}, nil
	})
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func mustEncode(t *testing.T, s string, enc interface {
	String(string) (string, error)
}) []byte {
	t.Helper()
	out, err := enc.String(s)
	require.NoError(t, err)
	return []byte(out)
}

func TestRead_Charsets(t *testing.T) {
	const trad = "繁體中文測試"
	const simp = "简体中文测试"

	tests := []struct {
		name        string
		data        []byte
		label       string
		want        string
		wantCharset string
	}{
		{
			name:        "utf-8 passes through",
			data:        []byte("hello, 世界"),
			label:       "UTF-8",
			want:        "hello, 世界",
			wantCharset: "UTF-8",
		},
		{
			name:        "big5",
			data:        mustEncode(t, trad, traditionalchinese.Big5.NewEncoder()),
			label:       "Big5",
			want:        trad,
			wantCharset: "Big5",
		},
		{
			name:        "gb18030 with detector spelling",
			data:        mustEncode(t, simp, simplifiedchinese.GB18030.NewEncoder()),
			label:       "GB-18030",
			want:        simp,
			wantCharset: "GB18030",
		},
		{
			name:        "gbk decodes through gb18030",
			data:        mustEncode(t, simp, simplifiedchinese.GBK.NewEncoder()),
			label:       "GBK",
			want:        simp,
			wantCharset: "GB18030",
		},
		{
			name:        "other charsets fall back to the encoding index",
			data:        []byte{'c', 'a', 'f', 0xE9},
			label:       "ISO-8859-1",
			want:        "café",
			wantCharset: "ISO-8859-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.data)
			r := NewReader(fixedDetector(tt.label), nil)

			got, err := r.Read(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Content)
			assert.Equal(t, tt.wantCharset, got.Charset)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		detector Detector
		check    func(t *testing.T, err error)
	}{
		{
			name: "undetected charset",
			data: []byte("abc"),
			detector: DetectorFunc(func([]byte) (Detection, error) {
				return Detection{}, types.ErrCharsetNotDetected
			}),
			check: func(t *testing.T, err error) {
				var de *types.CharsetDetectionError
				require.ErrorAs(t, err, &de)
				assert.Contains(t, err.Error(), "charset detection")
			},
		},
		{
			name: "detector error is wrapped",
			data: []byte("abc"),
			detector: DetectorFunc(func([]byte) (Detection, error) {
				return Detection{}, errors.New("detector exploded")
			}),
			check: func(t *testing.T, err error) {
				var de *types.CharsetDetectionError
				require.ErrorAs(t, err, &de)
				assert.Contains(t, err.Error(), "detector exploded")
			},
		},
		{
			name:     "unsupported label",
			data:     []byte("abc"),
			detector: fixedDetector("x-klingon"),
			check: func(t *testing.T, err error) {
				var ue *types.UnsupportedCharsetError
				require.ErrorAs(t, err, &ue)
				assert.Equal(t, "x-klingon", ue.Charset)
			},
		},
		{
			name:     "binary content",
			data:     []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00, 0x00, 0x0d},
			detector: fixedDetector("windows-1252"),
			check: func(t *testing.T, err error) {
				var de *types.CharsetDetectionError
				require.ErrorAs(t, err, &de)
				assert.ErrorIs(t, err, types.ErrBinaryContent)
			},
		},
		{
			name:     "odd-length utf-16",
			data:     []byte{0xFF, 0xFE, 'h', 0x00, 'i'},
			detector: fixedDetector("UTF-8"),
			check: func(t *testing.T, err error) {
				var de *types.CharsetDecodingError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, "UTF-16LE", de.Charset)
			},
		},
		{
			name:     "malformed big5",
			data:     []byte{'a', 0x80, 'b'},
			detector: fixedDetector("Big5"),
			check: func(t *testing.T, err error) {
				var de *types.CharsetDecodingError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, "Big5", de.Charset)
			},
		},
		{
			name:     "invalid utf-8",
			data:     []byte("ab\xffcd"),
			detector: fixedDetector("UTF-8"),
			check: func(t *testing.T, err error) {
				var de *types.CharsetDecodingError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, 2, de.Offset)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.data)
			_, err := NewReader(tt.detector, nil).ReadAsText(context.Background(), path)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestRead_ByteOrderMark(t *testing.T) {
	noDetect := DetectorFunc(func([]byte) (Detection, error) {
		t.Error("detector must not run when a byte-order mark is present")
		return Detection{}, nil
	})
	r := NewReader(noDetect, nil)

	t.Run("utf-8", func(t *testing.T) {
		path := writeFile(t, append([]byte{0xEF, 0xBB, 0xBF}, "hi"...))
		got, err := r.Read(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "hi", got.Content)
		assert.True(t, got.HadBOM)
	})

	t.Run("utf-16le", func(t *testing.T) {
		path := writeFile(t, []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00})
		got, err := r.Read(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "hi", got.Content)
		assert.Equal(t, "UTF-16LE", got.Charset)
	})

	t.Run("utf-16le keeps U+FFFD", func(t *testing.T) {
		path := writeFile(t, []byte{0xFF, 0xFE, 'a', 0x00, 0xFD, 0xFF, 'b', 0x00})
		got, err := r.Read(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "a\uFFFDb", got.Content)
	})
}

func TestRead_ControlCharactersInText(t *testing.T) {
	data := []byte("col1\tcol2\r\n\x1b$B\x1b(B\fend\v")
	path := writeFile(t, data)
	got, err := NewReader(fixedDetector("UTF-8"), nil).ReadAsText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, string(data), got)
}

func TestRead_EmptyFile(t *testing.T) {
	path := writeFile(t, nil)
	got, err := NewReader(fixedDetector("Big5"), nil).ReadAsText(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewReader(nil, nil).ReadAsText(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	var ioe *types.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "read", ioe.Op)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestRead_CancelledContext(t *testing.T) {
	path := writeFile(t, []byte("hello"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader(fixedDetector("UTF-8"), nil).ReadAsText(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChardetDetector_UTF8(t *testing.T) {
	text := strings.Repeat("這是一段用來測試字元編碼偵測的中文文字。", 20)
	det, err := NewChardetDetector().Detect([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", det.Charset)
}

func TestDetect(t *testing.T) {
	path := writeFile(t, []byte("hello"))
	det, err := NewReader(fixedDetector("windows-1252"), nil).Detect(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", det.Charset)
	assert.Equal(t, 80, det.Confidence)
}

func TestCanonicalAndRecognized(t *testing.T) {
	assert.True(t, Recognized("GB-18030"))
	assert.True(t, Recognized("big5"))
	assert.False(t, Recognized("UTF-8"))
	assert.Equal(t, "GB18030", Canonical("gb_2312"))
	assert.Equal(t, "UTF-8", Canonical("utf8"))
	assert.Equal(t, "Shift_JIS", Canonical("Shift_JIS"))

	assert.True(t, Supported("UTF-8"))
	assert.True(t, Supported("windows-1252"))
	assert.True(t, Supported("GBK"))
	assert.False(t, Supported("x-klingon"))
}
