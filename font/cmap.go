package font

import (
	"bytes"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/tsawler/pdftext/core"
)

// maxRangeSize caps the number of codes a single bfrange entry may expand
// to.
const maxRangeSize = 0x10000

// CMap is a parsed ToUnicode CMap.
type CMap struct {
	// Map translates character codes, as runes, to Unicode text.
	Map map[rune]string
	// Width is the number of bytes per character code, 0 when the CMap
	// declares nothing.
	Width int
	codes map[int]bool
}

// Codes returns the mapped character codes in ascending order.
func (cm *CMap) Codes() []int {
	codes := make([]int, 0, len(cm.codes))
	for c := range cm.codes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// SpaceCode returns the lowest code that maps to a single space.
func (cm *CMap) SpaceCode() (int, bool) {
	for _, c := range cm.Codes() {
		if cm.Map[rune(c)] == " " {
			return c, true
		}
	}
	return 0, false
}

// ParseToUnicodeCMap decodes a ToUnicode stream and parses it.
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}
	return ParseCMap(data), nil
}

// ParseCMap reads the codespace ranges and bfchar and bfrange sections of
// a CMap program. Parsing stops quietly at the first malformed token and
// keeps the mappings read before it.
func ParseCMap(data []byte) *CMap {
	cm := &CMap{Map: map[rune]string{}, codes: map[int]bool{}}
	p := core.NewParser(bytes.NewReader(data))
	var operands []core.Object
	for {
		obj, op, err := p.ParseContentItem()
		if err != nil {
			return cm
		}
		if op == "" {
			operands = append(operands, obj)
			continue
		}
		switch op {
		case "endcodespacerange":
			for i := 0; i+1 < len(operands); i += 2 {
				if lo, ok := operands[i].(core.String); ok {
					cm.noteWidth(len(lo))
				}
			}
		case "endbfchar":
			for i := 0; i+1 < len(operands); i += 2 {
				cm.bfchar(operands[i], operands[i+1])
			}
		case "endbfrange":
			for i := 0; i+2 < len(operands); i += 3 {
				cm.bfrange(operands[i], operands[i+1], operands[i+2])
			}
		}
		operands = nil
	}
}

func (cm *CMap) noteWidth(n int) {
	if n > cm.Width {
		cm.Width = n
	}
}

func (cm *CMap) set(code int, text string) {
	if code < 0 || code > utf8.MaxRune {
		return
	}
	cm.Map[rune(code)] = text
	cm.codes[code] = true
}

func (cm *CMap) bfchar(src, dst core.Object) {
	s, ok := src.(core.String)
	if !ok || len(s) == 0 {
		return
	}
	var text string
	switch d := dst.(type) {
	case core.String:
		if len(d) < 2 {
			text = string(latin1(d))
		} else {
			text = utf16be([]byte(d))
		}
	case core.Name:
		t, ok := glyphText(string(d))
		if !ok {
			return
		}
		text = t
	default:
		return
	}
	cm.noteWidth(len(s))
	cm.set(codeValue(s), text)
}

func (cm *CMap) bfrange(loObj, hiObj, dst core.Object) {
	lo, ok1 := loObj.(core.String)
	hi, ok2 := hiObj.(core.String)
	if !ok1 || !ok2 || len(lo) == 0 || len(hi) == 0 {
		return
	}
	cm.noteWidth(max(len(lo), len(hi)))
	first, last := codeValue(lo), codeValue(hi)
	if last < first || last-first >= maxRangeSize {
		return
	}

	switch d := dst.(type) {
	case core.Array:
		for i, elem := range d {
			code := first + i
			if code > last {
				break
			}
			if s, ok := elem.(core.String); ok {
				cm.set(code, utf16be([]byte(s)))
			}
		}
	case core.String:
		// The destination increments as one big-endian number.
		cur := []byte(d)
		if len(cur) < 2 {
			cur = append(make([]byte, 2-len(cur)), cur...)
		}
		for code := first; code <= last; code++ {
			cm.set(code, utf16be(cur))
			increment(cur)
		}
	}
}

func codeValue(s core.String) int {
	v := 0
	for _, b := range []byte(s) {
		v = v<<8 | int(b)
	}
	return v
}

func increment(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}

func latin1(s core.String) []rune {
	r := make([]rune, len(s))
	for i, b := range []byte(s) {
		r[i] = rune(b)
	}
	return r
}

func utf16be(b []byte) string {
	out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return string(utf8.RuneError)
	}
	return string(out)
}
