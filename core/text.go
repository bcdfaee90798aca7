package core

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// StringKind tells how the bytes of a String are meant to be read.
type StringKind int

const (
	// TextString is human-readable text: UTF-16 with a byte order mark,
	// UTF-8 with a byte order mark, or bytes that are all defined in
	// PDFDocEncoding.
	TextString StringKind = iota
	// ByteString is anything else, typically multi-byte glyph codes.
	ByteString
)

func (k StringKind) String() string {
	if k == TextString {
		return "text"
	}
	return "bytes"
}

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
)

// Bytes returns the raw bytes of the string.
func (s String) Bytes() []byte {
	return []byte(s)
}

// Kind classifies the string as text or raw bytes.
func (s String) Kind() StringKind {
	b := []byte(s)
	if hasUnicodeBOM(b) {
		return TextString
	}
	for _, c := range b {
		if PDFDocEncoding[c] == utf8.RuneError {
			return ByteString
		}
	}
	return TextString
}

// Text returns the string interpreted as text. Byte strings are read as
// Latin-1 so that every byte maps to exactly one rune.
func (s String) Text() string {
	b := []byte(s)
	switch {
	case bytes.HasPrefix(b, bomUTF8):
		return string(b[len(bomUTF8):])
	case bytes.HasPrefix(b, bomUTF16BE), bytes.HasPrefix(b, bomUTF16LE):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	if s.Kind() == ByteString {
		out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(out)
	}
	return DecodePDFDoc(b)
}

func hasUnicodeBOM(b []byte) bool {
	return bytes.HasPrefix(b, bomUTF16BE) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF8)
}

// DecodePDFDoc maps each byte through PDFDocEncoding. Undefined codes come
// out as U+FFFD.
func DecodePDFDoc(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(PDFDocEncoding[c])
	}
	return sb.String()
}

// PDFDocEncoding maps byte codes to runes. Codes that the encoding leaves
// undefined hold utf8.RuneError.
var PDFDocEncoding = func() [256]rune {
	var t [256]rune
	for i := range t {
		t[i] = rune(i)
	}
	for i := 0x00; i <= 0x17; i++ {
		if i != '\t' && i != '\n' && i != '\r' {
			t[i] = utf8.RuneError
		}
	}
	t[0x7F], t[0x9F], t[0xAD] = utf8.RuneError, utf8.RuneError, utf8.RuneError

	copy(t[0x18:0x20], []rune{
		'˘', 'ˇ', 'ˆ', '˙', '˝', '˛', '˚', '˜',
	})
	copy(t[0x80:0x9F], []rune{
		'•', '†', '‡', '…', '—', '–', 'ƒ', '⁄',
		'‹', '›', '−', '‰', '„', '“', '”', '‘',
		'’', '‚', '™', 'ﬁ', 'ﬂ', 'Ł', 'Œ', 'Š',
		'Ÿ', 'Ž', 'ı', 'ł', 'œ', 'š', 'ž',
	})
	t[0xA0] = '€'
	return t
}()
