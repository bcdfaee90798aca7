package font

import (
	"fmt"

	"github.com/tsawler/pdftext/core"
)

// DefaultAnalyzer reads encodings, ToUnicode CMaps and widths straight
// from the font dictionaries.
var DefaultAnalyzer Analyzer = dictAnalyzer{}

type dictAnalyzer struct{}

func (dictAnalyzer) AnalyzeFont(id string, spaceWidth float64, page Page) (FontInfo, error) {
	ft, err := fontDict(id, page)
	if err != nil {
		return FontInfo{}, err
	}
	a := &fontAnalysis{page: page, ft: ft, spaceCode: ' '}
	a.subtype, _ = ft.GetName("Subtype")
	if name, ok := ft.GetName("BaseFont"); ok {
		a.baseFont = stripSubset(string(name))
	}

	enc, decided := a.encoding()
	cmap := a.toUnicode()
	if cmap != nil {
		if code, ok := cmap.SpaceCode(); ok {
			a.spaceCode = code
		}
	} else {
		cmap = &CMap{Map: map[rune]string{}, codes: map[int]bool{}}
	}

	switch {
	case !decided && cmap.Width <= 1:
		enc = Encoding{Name: "charmap"}
	case !decided:
		enc = Encoding{Name: "utf-16-be"}
	case enc.IsTable():
		for _, c := range cmap.Codes() {
			if c <= 0xFF {
				enc.Table[c] = string(rune(c))
			}
		}
	}

	return FontInfo{
		Subtype:   string(a.subtype),
		HalfSpace: a.spaceWidth(spaceWidth) / 2,
		Encoding:  enc,
		Map:       cmap.Map,
		Font:      ft,
	}, nil
}

func fontDict(id string, page Page) (core.Dict, error) {
	res, err := EffectiveResources(page)
	if err != nil {
		return nil, err
	}
	fonts, err := resolveDict(page, res.Get("Font"))
	if err != nil || fonts == nil {
		return nil, fmt.Errorf("no /Font resources for %s", id)
	}
	ft, err := resolveDict(page, fonts.Get(id))
	if err != nil {
		return nil, err
	}
	if ft == nil {
		return nil, fmt.Errorf("font %s is not a dictionary", id)
	}
	return ft, nil
}

func resolveDict(page Page, obj core.Object) (core.Dict, error) {
	if obj == nil {
		return nil, nil
	}
	res, err := page.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch d := res.(type) {
	case core.Dict:
		return d, nil
	case *core.Stream:
		return d.Dict, nil
	}
	return nil, nil
}

type fontAnalysis struct {
	page      Page
	ft        core.Dict
	subtype   core.Name
	baseFont  string
	spaceCode int
}

func (a *fontAnalysis) resolve(obj core.Object) core.Object {
	if obj == nil {
		return nil
	}
	res, err := a.page.Resolve(obj)
	if err != nil {
		return nil
	}
	return res
}

// encoding reads /Encoding. decided is false when the font leaves the
// choice to its ToUnicode CMap.
func (a *fontAnalysis) encoding() (enc Encoding, decided bool) {
	encObj := a.resolve(a.ft.Get("Encoding"))
	if encObj == nil {
		_, std := standardSpaceWidths[a.baseFont]
		switch {
		case builtinEncodings[a.baseFont] != nil:
			return Encoding{Table: builtinEncodings[a.baseFont].table()}, true
		case std, a.subtype == "Type1":
			return Encoding{Name: "charmap"}, true
		}
		return Encoding{}, false
	}

	switch e := encObj.(type) {
	case core.Name:
		if base, ok := baseEncodings[string(e)]; ok {
			return Encoding{Table: base.table()}, true
		}
		if codec, ok := predefinedCMapCodec(string(e)); ok {
			return Encoding{Name: codec}, true
		}
		return Encoding{Name: string(e)}, true
	case *core.Stream:
		if name, ok := e.Dict.GetName("CMapName"); ok {
			if codec, ok := predefinedCMapCodec(string(name)); ok {
				return Encoding{Name: codec}, true
			}
		}
		return Encoding{Name: "utf-16-be"}, true
	case core.Dict:
		base := &standardEncoding
		if builtin, ok := builtinEncodings[a.baseFont]; ok {
			base = builtin
		}
		if name, ok := a.resolve(e.Get("BaseEncoding")).(core.Name); ok {
			if named, ok := baseEncodings[string(name)]; ok {
				base = named
			}
		}
		table := base.table()
		a.applyDifferences(table, e.Get("Differences"))
		return Encoding{Table: table}, true
	}
	return Encoding{}, false
}

func (a *fontAnalysis) applyDifferences(table map[int]string, obj core.Object) {
	if obj == nil {
		return
	}
	deep, err := a.page.ResolveDeep(obj)
	if err != nil {
		return
	}
	diffs, ok := deep.(core.Array)
	if !ok {
		return
	}
	code := 0
	for _, elem := range diffs {
		switch v := elem.(type) {
		case core.Int:
			code = int(v)
		case core.Real:
			code = int(v)
		case core.Name:
			if text, ok := glyphText(string(v)); ok && code >= 0 && code <= 0xFF {
				table[code] = text
				if text == " " {
					a.spaceCode = code
				}
			}
			code++
		}
	}
}

// toUnicode parses the /ToUnicode stream. A missing or unreadable stream
// yields nil.
func (a *fontAnalysis) toUnicode() *CMap {
	stm, ok := a.resolve(a.ft.Get("ToUnicode")).(*core.Stream)
	if !ok {
		return nil
	}
	cmap, err := ParseToUnicodeCMap(stm)
	if err != nil {
		return nil
	}
	return cmap
}

// spaceWidth finds the width of the space glyph in glyph space units.
func (a *fontAnalysis) spaceWidth(fallback float64) float64 {
	if desc, ok := a.resolve(a.ft.Get("DescendantFonts")).(core.Array); ok {
		return a.cidSpaceWidth(desc)
	}
	if widths, ok := a.resolve(a.ft.Get("Widths")).(core.Array); ok {
		return a.simpleSpaceWidth(widths)
	}
	if w, ok := standardSpaceWidths[a.baseFont]; ok {
		return w
	}
	return 2 * fallback
}

func (a *fontAnalysis) cidSpaceWidth(desc core.Array) float64 {
	cid, _ := resolveDict(a.page, desc.Get(0))
	dw := 1000.0
	if cid == nil {
		return dw / 2
	}
	if v, ok := core.Number(a.resolve(cid.Get("DW"))); ok {
		dw = v
	}
	if wObj := cid.Get("W"); wObj != nil {
		if deep, err := a.page.ResolveDeep(wObj); err == nil {
			if w, ok := deep.(core.Array); ok {
				if width, ok := cidWidths(w)[a.spaceCode]; ok {
					return width
				}
			}
		}
	}
	return dw / 2
}

func (a *fontAnalysis) simpleSpaceWidth(widths core.Array) float64 {
	first := 0
	if v, ok := core.Number(a.resolve(a.ft.Get("FirstChar"))); ok {
		first = int(v)
	}
	last := first + len(widths) - 1
	if v, ok := core.Number(a.resolve(a.ft.Get("LastChar"))); ok {
		last = int(v)
	}
	if a.spaceCode >= first && a.spaceCode <= last {
		if w, ok := core.Number(a.resolve(widths.Get(a.spaceCode - first))); ok && w != 0 {
			return w
		}
	}

	if desc, _ := resolveDict(a.page, a.ft.Get("FontDescriptor")); desc != nil {
		if w, ok := core.Number(a.resolve(desc.Get("MissingWidth"))); ok {
			return w
		}
	}

	sum, n := 0.0, 0
	for _, elem := range widths {
		if w, ok := core.Number(a.resolve(elem)); ok && w > 0 {
			sum += w
			n++
		}
	}
	return sum / float64(max(n, 1)) / 2
}
