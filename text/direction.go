package text

import (
	"fmt"
	"unicode"
)

// Direction is the dominant writing direction of a text block.
type Direction int

const (
	// LTR (Left-to-Right) for Latin, Cyrillic, CJK, etc.
	LTR Direction = iota
	// RTL (Right-to-Left) for Arabic, Hebrew, etc.
	RTL
	// Neutral for text without letters: numbers, punctuation, whitespace.
	Neutral
)

// String returns "ltr", "rtl" or "neutral".
func (d Direction) String() string {
	switch d {
	case LTR:
		return "ltr"
	case RTL:
		return "rtl"
	case Neutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ltr":
		*d = LTR
	case "rtl":
		*d = RTL
	case "neutral":
		*d = Neutral
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

var rtlScripts = []*unicode.RangeTable{
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Syriac,
	unicode.Thaana,
	unicode.Nko,
}

// DetectDirection counts the strongly directional characters of text and
// returns the direction of the majority, or Neutral when there are none.
// Ties go to LTR.
func DetectDirection(text string) Direction {
	ltr, rtl := 0, 0
	for _, r := range text {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	}
	return LTR
}

// CharDirection returns the inherent direction of r. Letters of the
// right-to-left scripts are RTL, all other letters LTR, and everything
// else Neutral.
func CharDirection(r rune) Direction {
	switch {
	case !unicode.IsLetter(r) && !unicode.IsMark(r):
		return Neutral
	case unicode.In(r, rtlScripts...):
		return RTL
	}
	return LTR
}
