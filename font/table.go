package font

import (
	"fmt"
	"sort"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/pages"
)

// Page is the view of a page that font analysis needs. *pages.Page
// satisfies it.
type Page interface {
	// Chain returns the page dictionary followed by its /Parent ancestors.
	Chain() ([]core.Dict, error)
	Resolve(obj core.Object) (core.Object, error)
	ResolveDeep(obj core.Object) (core.Object, error)
}

// Analyzer derives the decoding data of the font resource id on page.
type Analyzer interface {
	AnalyzeFont(id string, spaceWidth float64, page Page) (FontInfo, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(id string, spaceWidth float64, page Page) (FontInfo, error)

// AnalyzeFont calls f.
func (f AnalyzerFunc) AnalyzeFont(id string, spaceWidth float64, page Page) (FontInfo, error) {
	return f(id, spaceWidth, page)
}

// CharMapTable maps font resource names, as used by Tf, to their decoding
// data.
type CharMapTable map[string]*CharMap

// IDs returns the font ids in the table, sorted.
func (t CharMapTable) IDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EffectiveResources returns the /Resources dictionary that applies to
// page: the first one found on the page or, failing that, on the nearest
// ancestor that has one.
func EffectiveResources(page Page) (core.Dict, error) {
	return pages.Resources(page)
}

// NewCharMapTable analyzes every font in the page's effective resources.
// A nil analyzer means DefaultAnalyzer. Fonts are analyzed in sorted id
// order.
func NewCharMapTable(page Page, spaceWidth float64, an Analyzer) (CharMapTable, error) {
	if an == nil {
		an = DefaultAnalyzer
	}
	res, err := EffectiveResources(page)
	if err != nil {
		return nil, err
	}

	table := CharMapTable{}
	fontsObj := res.Get("Font")
	if fontsObj == nil {
		return table, nil
	}
	resolved, err := page.Resolve(fontsObj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Font: %w", err)
	}
	fonts, ok := resolved.(core.Dict)
	if !ok {
		return table, nil
	}

	for _, id := range fonts.Keys() {
		info, err := an.AnalyzeFont(id, spaceWidth, page)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", id, err)
		}
		table[id] = newCharMap(info)
	}
	return table, nil
}
