package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/pdiddy/batchconv/internal/charset"
	"github.com/pdiddy/batchconv/internal/convert"
	"github.com/pdiddy/batchconv/pkg/types"
)

func big5Reader() *charset.Reader {
	return charset.NewReader(charset.DetectorFunc(func([]byte) (charset.Detection, error) {
		return charset.Detection{Charset: "Big5", Confidence: 90}, nil
	}), nil)
}

func TestShowFile(t *testing.T) {
	data, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte("漢語 text"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "big5.txt")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Run("decoded", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, showFile(context.Background(), big5Reader(), nil, "s2t", path, &buf))
		assert.Equal(t, "漢語 text\n", buf.String())
	})

	t.Run("preview", func(t *testing.T) {
		upper := convert.Func(func(text, configID string) (string, error) {
			assert.Equal(t, "custom", configID)
			return strings.ToUpper(text), nil
		})
		var buf bytes.Buffer
		require.NoError(t, showFile(context.Background(), big5Reader(), upper, "custom", path, &buf))
		assert.Equal(t, "漢語 TEXT\n", buf.String())
	})

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, after, "show never writes the file")
}

func TestShowFile_Binary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, 0o644))

	var buf bytes.Buffer
	err := showFile(context.Background(), big5Reader(), nil, "s2t", path, &buf)
	assert.ErrorIs(t, err, types.ErrBinaryContent)
	assert.Empty(t, buf.String())
}
