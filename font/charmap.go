package font

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/pages"
)

// DefaultSpaceWidth is the fallback width, in glyph space units, of a space
// for fonts that carry no width information at all.
const DefaultSpaceWidth = 200.0

var (
	// ErrUnsupportedEncoding is returned when an operand cannot be decoded
	// with the font's encoding.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrMissingResourceChain is returned when neither a page nor any of its
	// ancestors carries a /Resources dictionary. It is the same value as
	// pages.ErrMissingResourceChain.
	ErrMissingResourceChain = pages.ErrMissingResourceChain
)

// Encoding is how a font's string operands turn into text. It is either a
// named codec such as "charmap" or "utf-16-be", or an explicit table from
// single-byte codes to text.
type Encoding struct {
	Name  string
	Table map[int]string
}

// IsTable reports whether the encoding is an explicit code table.
func (e Encoding) IsTable() bool {
	return e.Table != nil
}

func (e Encoding) String() string {
	if e.IsTable() {
		return fmt.Sprintf("table(%d codes)", len(e.Table))
	}
	return e.Name
}

// FontInfo is what an Analyzer learns about one font.
type FontInfo struct {
	Subtype   string
	HalfSpace float64
	Encoding  Encoding
	Map       map[rune]string
	Font      core.Dict
}

// CharMap holds the decoding data of one font resource on one page. It is
// built once by NewCharMapTable and never modified afterwards.
type CharMap struct {
	// Subtype is the font's /Subtype, such as "Type1" or "Type0".
	Subtype string
	// HalfSpace is half the width of the space glyph. A TJ adjustment
	// below -HalfSpace reads as a word break.
	HalfSpace float64
	Encoding  Encoding
	// Map translates decoded runes, usually from the font's ToUnicode CMap.
	Map map[rune]string
	// Font is the font dictionary the data was derived from.
	Font core.Dict
}

func newCharMap(info FontInfo) *CharMap {
	m := info.Map
	if m == nil {
		m = map[rune]string{}
	}
	return &CharMap{
		Subtype:   info.Subtype,
		HalfSpace: info.HalfSpace,
		Encoding:  info.Encoding,
		Map:       m,
		Font:      info.Font,
	}
}

func (cm *CharMap) translate(s string) string {
	if len(cm.Map) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if v, ok := cm.Map[r]; ok {
			b.WriteString(v)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decode turns a string operand into text using cm.
//
// A text string under the "charmap" encoding must be plain ASCII and is
// translated through cm.Map. A byte string under a named encoding is
// decoded with that codec and then translated. Under a table encoding the
// operand's own text reading is returned and cm.Map is not applied; for a
// byte string that reading is Latin-1, so each byte becomes the code point
// of the same value rather than the operand being rejected.
// Every other combination fails with ErrUnsupportedEncoding.
func Decode(s core.String, cm *CharMap) (string, error) {
	if cm == nil {
		return "", fmt.Errorf("%w: no character map", ErrUnsupportedEncoding)
	}
	if cm.Encoding.IsTable() {
		return s.Text(), nil
	}

	name := cm.Encoding.Name
	switch kind := s.Kind(); {
	case kind == core.TextString && name == "charmap":
		raw := s.Bytes()
		for i, c := range raw {
			if c >= 0x80 {
				return "", fmt.Errorf("%w: byte 0x%02x at offset %d is not ASCII", ErrUnsupportedEncoding, c, i)
			}
		}
		return cm.translate(string(raw)), nil

	case kind == core.ByteString && name != "":
		codec, err := LookupCodec(name)
		if err != nil {
			return "", err
		}
		out, err := codec.NewDecoder().Bytes(s.Bytes())
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnsupportedEncoding, name, err)
		}
		return cm.translate(string(out)), nil
	}

	if name == "" {
		return "", fmt.Errorf("%w: %s operand and no encoding", ErrUnsupportedEncoding, s.Kind())
	}
	return "", fmt.Errorf("%w: %s operand with encoding %q", ErrUnsupportedEncoding, s.Kind(), name)
}
