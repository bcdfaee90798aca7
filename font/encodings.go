package font

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/pdftext/core"
)

// A simpleEncoding maps single-byte codes to runes. Zero marks an
// undefined code.
type simpleEncoding [256]rune

func (e *simpleEncoding) table() map[int]string {
	t := make(map[int]string, 256)
	for code, r := range e {
		if r != 0 {
			t[code] = string(r)
		}
	}
	return t
}

// baseEncodings holds the encodings a font may name in /Encoding or
// /BaseEncoding.
var baseEncodings = map[string]*simpleEncoding{
	"StandardEncoding":     &standardEncoding,
	"WinAnsiEncoding":      &winAnsiEncoding,
	"MacRomanEncoding":     &macRomanEncoding,
	"PDFDocEncoding":       &pdfDocEncoding,
	"SymbolEncoding":       &symbolEncoding,
	"ZapfDingbatsEncoding": &zapfDingbatsEncoding,
}

// builtinEncodings are the encodings built into the symbolic standard
// fonts.
var builtinEncodings = map[string]*simpleEncoding{
	"Symbol":       &symbolEncoding,
	"ZapfDingbats": &zapfDingbatsEncoding,
}

var standardEncoding = func() simpleEncoding {
	var e simpleEncoding
	for c := 0x20; c < 0x7F; c++ {
		e[c] = rune(c)
	}
	e[0x27] = '’'
	e[0x60] = '‘'
	for code, r := range map[int]rune{
		0xA1: '¡', 0xA2: '¢', 0xA3: '£', 0xA4: '⁄', 0xA5: '¥', 0xA6: 'ƒ',
		0xA7: '§', 0xA8: '¤', 0xA9: '\'', 0xAA: '“', 0xAB: '«', 0xAC: '‹',
		0xAD: '›', 0xAE: 'ﬁ', 0xAF: 'ﬂ', 0xB1: '–', 0xB2: '†',
		0xB3: '‡', 0xB4: '·', 0xB6: '¶', 0xB7: '•', 0xB8: '‚',
		0xB9: '„', 0xBA: '”', 0xBB: '»', 0xBC: '…', 0xBD: '‰',
		0xBF: '¿', 0xC1: '`', 0xC2: '´', 0xC3: 'ˆ', 0xC4: '˜', 0xC5: '¯',
		0xC6: '˘', 0xC7: '˙', 0xC8: '¨', 0xCA: '˚', 0xCB: '¸',
		0xCD: '˝', 0xCE: '˛', 0xCF: 'ˇ', 0xD0: '—', 0xE1: 'Æ',
		0xE3: 'ª', 0xE8: 'Ł', 0xE9: 'Ø', 0xEA: 'Œ', 0xEB: 'º', 0xF1: 'æ',
		0xF5: 'ı', 0xF8: 'ł', 0xF9: 'ø', 0xFA: 'œ', 0xFB: 'ß',
	} {
		e[code] = r
	}
	return e
}()

var winAnsiEncoding = fromCharmap(charmap.Windows1252)

var macRomanEncoding = fromCharmap(charmap.Macintosh)

func fromCharmap(cm *charmap.Charmap) simpleEncoding {
	var e simpleEncoding
	for c := 0x20; c < 256; c++ {
		if c == 0x7F {
			continue
		}
		if r := cm.DecodeByte(byte(c)); r != utf8.RuneError {
			e[c] = r
		}
	}
	return e
}

var pdfDocEncoding = func() simpleEncoding {
	var e simpleEncoding
	for c, r := range core.PDFDocEncoding {
		if r != utf8.RuneError && c >= 0x18 {
			e[c] = r
		}
	}
	return e
}()

var symbolEncoding = func() simpleEncoding {
	var e simpleEncoding
	for c := 0x20; c < 0x7F; c++ {
		e[c] = rune(c)
	}
	for code, r := range map[int]rune{
		0x22: '∀', 0x24: '∃', 0x27: '∋', 0x2A: '∗', 0x2D: '−',
		0x40: '≅', 0x5C: '∴', 0x5E: '⊥', 0x60: '\uf8e5', 0x7E: '∼',
	} {
		e[code] = r
	}
	greek := map[rune]rune{
		'A': 'Α', 'B': 'Β', 'C': 'Χ', 'D': 'Δ', 'E': 'Ε', 'F': 'Φ', 'G': 'Γ', 'H': 'Η',
		'I': 'Ι', 'J': 'ϑ', 'K': 'Κ', 'L': 'Λ', 'M': 'Μ', 'N': 'Ν', 'O': 'Ο', 'P': 'Π',
		'Q': 'Θ', 'R': 'Ρ', 'S': 'Σ', 'T': 'Τ', 'U': 'Υ', 'V': 'ς', 'W': 'Ω', 'X': 'Ξ',
		'Y': 'Ψ', 'Z': 'Ζ',
		'a': 'α', 'b': 'β', 'c': 'χ', 'd': 'δ', 'e': 'ε', 'f': 'φ', 'g': 'γ', 'h': 'η',
		'i': 'ι', 'j': 'ϕ', 'k': 'κ', 'l': 'λ', 'm': 'μ', 'n': 'ν', 'o': 'ο', 'p': 'π',
		'q': 'θ', 'r': 'ρ', 's': 'σ', 't': 'τ', 'u': 'υ', 'v': 'ϖ', 'w': 'ω', 'x': 'ξ',
		'y': 'ψ', 'z': 'ζ',
	}
	for latin, r := range greek {
		e[latin] = r
	}
	high := []rune{
		// 0xA0
		'€', 'ϒ', '′', '≤', '⁄', '∞', 'ƒ', '♣',
		'♦', '♥', '♠', '↔', '←', '↑', '→', '↓',
		// 0xB0
		'°', '±', '″', '≥', '×', '∝', '∂', '•',
		'÷', '≠', '≡', '≈', '…', '\uf8e6', '\uf8e7', '↵',
		// 0xC0
		'ℵ', 'ℑ', 'ℜ', '℘', '⊗', '⊕', '∅', '∩',
		'∪', '⊃', '⊇', '⊄', '⊂', '⊆', '∈', '∉',
		// 0xD0
		'∠', '∇', '\uf6da', '\uf6d9', '\uf6db', '∏', '√', '⋅',
		'¬', '∧', '∨', '⇔', '⇐', '⇑', '⇒', '⇓',
		// 0xE0
		'◊', '〈', '\uf8e8', '\uf8e9', '\uf8ea', '∑', '\uf8eb', '\uf8ec',
		'\uf8ed', '\uf8ee', '\uf8ef', '\uf8f0', '\uf8f1', '\uf8f2', '\uf8f3', '\uf8f4',
		// 0xF0
		0, '〉', '∫', '⌠', '\uf8f5', '⌡', '\uf8f6', '\uf8f7',
		'\uf8f8', '\uf8f9', '\uf8fa', '\uf8fb', '\uf8fc', '\uf8fd', '\uf8fe', 0,
	}
	copy(e[0xA0:], high)
	return e
}()

var zapfDingbatsEncoding = func() simpleEncoding {
	var e simpleEncoding
	e[0x20] = ' '
	for c := 0x21; c <= 0x7E; c++ {
		e[c] = 0x2700 + rune(c-0x20)
	}
	for code, r := range map[int]rune{
		0x25: '☎', 0x2A: '☛', 0x2B: '☞', 0x48: '★', 0x6C: '●',
		0x6E: '■', 0x73: '▲', 0x74: '▼', 0x75: '◆', 0x77: '◗',
	} {
		e[code] = r
	}
	for c := 0x80; c <= 0x8D; c++ {
		e[c] = 0x2768 + rune(c-0x80)
	}
	for c := 0xA1; c <= 0xA7; c++ {
		e[c] = 0x2761 + rune(c-0xA1)
	}
	e[0xA8], e[0xA9], e[0xAA], e[0xAB] = '♣', '♦', '♥', '♠'
	for c := 0xAC; c <= 0xB5; c++ {
		e[c] = 0x2460 + rune(c-0xAC)
	}
	for c := 0xB6; c <= 0xD4; c++ {
		e[c] = 0x2776 + rune(c-0xB6)
	}
	e[0xD5], e[0xD6], e[0xD7] = '→', '↔', '↕'
	for c := 0xD8; c <= 0xEF; c++ {
		e[c] = 0x2798 + rune(c-0xD8)
	}
	for c := 0xF1; c <= 0xFE; c++ {
		e[c] = 0x27B1 + rune(c-0xF1)
	}
	return e
}()
