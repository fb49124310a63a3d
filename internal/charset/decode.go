// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package charset

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/pdiddy/batchconv/pkg/types"
)

// Canonical labels for the charsets handled without an index lookup.
const (
	labelUTF8    = "UTF-8"
	labelUTF16LE = "UTF-16LE"
	labelUTF16BE = "UTF-16BE"
	labelBig5    = "Big5"
	labelGB18030 = "GB18030"
)

// legacy maps normalized labels of the recognized legacy Chinese charsets
// to their decoders. GB18030 is a superset of GB2312 and GBK, so those
// labels decode through it as well.
var legacy = map[string]struct {
	label string
	enc   encoding.Encoding
}{
	"big5":    {labelBig5, traditionalchinese.Big5},
	"gb18030": {labelGB18030, simplifiedchinese.GB18030},
	"gb2312":  {labelGB18030, simplifiedchinese.GB18030},
	"gbk":     {labelGB18030, simplifiedchinese.GB18030},
}

// normalize lower-cases a label and drops separators so that "GB-18030",
// "gb_18030" and "GB18030" compare equal.
func normalize(label string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(label)))
}

// Recognized reports whether label names one of the legacy charsets that
// are always supported.
func Recognized(label string) bool {
	_, ok := legacy[normalize(label)]
	return ok
}

// Canonical returns the canonical spelling of label, or label unchanged
// when it is not one of the charsets known by name.
func Canonical(label string) string {
	n := normalize(label)
	if l, ok := legacy[n]; ok {
		return l.label
	}
	switch n {
	case "utf8":
		return labelUTF8
	case "utf16le":
		return labelUTF16LE
	case "utf16be":
		return labelUTF16BE
	}
	return label
}

// Supported reports whether Decode can handle label.
func Supported(label string) bool {
	return normalize(label) == "utf8" || lookup(label) != nil
}

// lookup resolves label to a decoder. The recognized legacy set is tried
// first, then the WHATWG and IANA indexes. A nil encoding means the label
// is not supported.
func lookup(label string) encoding.Encoding {
	n := normalize(label)
	if l, ok := legacy[n]; ok {
		return l.enc
	}
	switch n {
	case "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	if enc, err := htmlindex.Get(label); err == nil && enc != nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		return enc
	}
	return nil
}

// Decode converts data from the named charset to a UTF-8 string. path is
// used only to annotate errors.
func Decode(path string, data []byte, label string) (string, error) {
	if normalize(label) == "utf8" {
		if i := invalidUTF8(data); i >= 0 {
			return "", &types.CharsetDecodingError{Path: path, Charset: labelUTF8, Offset: i}
		}
		return string(data), nil
	}

	enc := lookup(label)
	if enc == nil {
		return "", &types.UnsupportedCharsetError{Path: path, Charset: label}
	}
	wide := isUTF16(label)
	if wide && len(data)%2 != 0 {
		return "", &types.CharsetDecodingError{Path: path, Charset: Canonical(label), Offset: len(data) - 1}
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &types.CharsetDecodingError{Path: path, Charset: Canonical(label), Offset: -1}
	}
	// x/text decoders substitute U+FFFD for malformed input rather than
	// failing. None of the legacy charsets encode U+FFFD itself; UTF-16
	// can, so it is exempt.
	if !wide && bytes.ContainsRune(out, utf8.RuneError) {
		return "", &types.CharsetDecodingError{Path: path, Charset: Canonical(label), Offset: -1}
	}
	return string(out), nil
}

// isUTF16 reports whether label names a UTF-16 form.
func isUTF16(label string) bool {
	switch normalize(label) {
	case "utf16", "utf16le", "utf16be":
		return true
	}
	return false
}

// invalidUTF8 returns the offset of the first invalid UTF-8 sequence in
// data, or -1 when data is valid.
func invalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
