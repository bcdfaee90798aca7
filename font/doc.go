// Package font turns the font resources of a page into the character maps
// used to decode text-showing operands.
//
// # Character Map Tables
//
// A [CharMapTable] holds one [CharMap] per font resource name of a page.
// It is built once per page from the effective /Resources, which may be
// inherited from an ancestor in the page tree:
//
//	table, err := font.NewCharMapTable(page, font.DefaultSpaceWidth, nil)
//
// The [Analyzer] interface does the per-font work. [DefaultAnalyzer] reads
// /Encoding (named encodings, /Differences, predefined CMaps), the
// /ToUnicode CMap and the widths needed to size a space.
//
// # Decoding
//
// [Decode] turns a string operand into text:
//
//	s, err := font.Decode(operand, table["F1"])
//
// Named encodings go through a codec from golang.org/x/text; see
// [LookupCodec] for the names understood.
package font
