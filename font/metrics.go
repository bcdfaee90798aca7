package font

import "github.com/tsawler/pdftext/core"

// standardSpaceWidths holds the width of the space glyph, in 1000ths of
// an em, for the Standard 14 fonts and the common narrow variants.
var standardSpaceWidths = map[string]float64{
	"Courier":                      600,
	"Courier-Bold":                 600,
	"Courier-Oblique":              600,
	"Courier-BoldOblique":          600,
	"Helvetica":                    278,
	"Helvetica-Bold":               278,
	"Helvetica-Oblique":            278,
	"Helvetica-BoldOblique":        278,
	"Helvetica-Narrow":             228,
	"Helvetica-Narrow-Bold":        228,
	"Helvetica-Narrow-Oblique":     228,
	"Helvetica-Narrow-BoldOblique": 228,
	"Times-Roman":                  250,
	"Times-Bold":                   250,
	"Times-Italic":                 250,
	"Times-BoldItalic":             250,
	"Symbol":                       250,
	"ZapfDingbats":                 278,
}

// IsStandardFont reports whether baseFont names one of the Standard 14
// fonts, ignoring any subset tag.
func IsStandardFont(baseFont string) bool {
	_, ok := standardSpaceWidths[stripSubset(baseFont)]
	return ok
}

// isSubsetFont checks for a subset tag such as "ABCDEF+".
func isSubsetFont(baseFont string) bool {
	if len(baseFont) < 8 || baseFont[6] != '+' {
		return false
	}
	for i := 0; i < 6; i++ {
		if baseFont[i] < 'A' || baseFont[i] > 'Z' {
			return false
		}
	}
	return true
}

func stripSubset(baseFont string) string {
	if isSubsetFont(baseFont) {
		return baseFont[7:]
	}
	return baseFont
}

// cidWidths expands a CIDFont /W array. Both forms are accepted:
// "c [w1 w2 ...]" and "cFirst cLast w". Expansion stops at the first
// malformed entry.
func cidWidths(w core.Array) map[int]float64 {
	out := map[int]float64{}
	for i := 0; i+1 < len(w); {
		first, ok := core.Number(w[i])
		if !ok {
			break
		}
		if list, ok := w[i+1].(core.Array); ok {
			for j, elem := range list {
				if width, ok := core.Number(elem); ok {
					out[int(first)+j] = width
				}
			}
			i += 2
			continue
		}
		last, ok1 := core.Number(w[i+1])
		width, ok2 := core.Number(w.Get(i + 2))
		if !ok1 || !ok2 || last < first || last-first >= maxRangeSize {
			break
		}
		for c := int(first); c <= int(last); c++ {
			out[c] = width
		}
		i += 3
	}
	return out
}
