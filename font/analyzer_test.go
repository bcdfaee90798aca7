package font

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdftext/core"
)

// fakePage is a page with a fixed chain whose references resolve from a map.
type fakePage struct {
	chain   []core.Dict
	objects map[int]core.Object
	err     error
}

func (p *fakePage) Chain() ([]core.Dict, error) { return p.chain, p.err }

func (p *fakePage) Resolve(obj core.Object) (core.Object, error) {
	for i := 0; i < 16; i++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		next, ok := p.objects[ref.Number]
		if !ok {
			return nil, fmt.Errorf("object %d not found", ref.Number)
		}
		obj = next
	}
	return nil, errors.New("reference chain too long")
}

func (p *fakePage) ResolveDeep(obj core.Object) (core.Object, error) {
	obj, err := p.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			if out[i], err = p.ResolveDeep(elem); err != nil {
				return nil, err
			}
		}
		return out, nil
	case core.Dict:
		out := make(core.Dict, len(v))
		for k, elem := range v {
			if out[k], err = p.ResolveDeep(elem); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return obj, nil
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

// pageWithFonts returns a page whose own /Resources hold fonts.
func pageWithFonts(fonts core.Dict, objects map[int]core.Object) *fakePage {
	page := core.Dict{"Type": core.Name("Page"), "Resources": core.Dict{"Font": fonts}}
	return &fakePage{chain: []core.Dict{page}, objects: objects}
}

func toUnicodeStream(cmap string) *core.Stream {
	return &core.Stream{Dict: core.Dict{}, Data: []byte(cmap)}
}

func TestEffectiveResources(t *testing.T) {
	own := core.Dict{"Font": core.Dict{"F1": ref(9)}}
	inherited := core.Dict{"Font": core.Dict{"F2": ref(9)}}

	tests := []struct {
		name    string
		page    *fakePage
		want    core.Dict
		wantErr bool
	}{
		{
			name: "page resources",
			page: &fakePage{chain: []core.Dict{{"Resources": own}, {"Resources": inherited}}},
			want: own,
		},
		{
			name: "inherited from grandparent",
			page: &fakePage{chain: []core.Dict{{}, {}, {"Resources": ref(5)}}, objects: map[int]core.Object{5: inherited}},
			want: inherited,
		},
		{
			name: "non-dictionary entry skipped",
			page: &fakePage{chain: []core.Dict{{"Resources": core.Int(3)}, {"Resources": inherited}}},
			want: inherited,
		},
		{
			name:    "no resources anywhere",
			page:    &fakePage{chain: []core.Dict{{}, {}}},
			wantErr: true,
		},
		{
			name:    "broken chain",
			page:    &fakePage{err: errors.New("circular /Parent")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveResources(tt.page)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingResourceChain) {
					t.Fatalf("EffectiveResources() error = %v, want ErrMissingResourceChain", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EffectiveResources() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("resources mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewCharMapTable(t *testing.T) {
	page := pageWithFonts(core.Dict{"F2": ref(2), "F1": ref(1), "F10": ref(3)}, map[int]core.Object{
		1: core.Dict{"Type": core.Name("Font"), "Subtype": core.Name("Type1"), "BaseFont": core.Name("Helvetica")},
		2: core.Dict{"Type": core.Name("Font"), "Subtype": core.Name("TrueType"), "BaseFont": core.Name("Arial")},
		3: core.Dict{"Type": core.Name("Font"), "Subtype": core.Name("Type0"), "BaseFont": core.Name("Foo")},
	})

	var order []string
	an := AnalyzerFunc(func(id string, spaceWidth float64, p Page) (FontInfo, error) {
		order = append(order, id)
		return FontInfo{Subtype: id, HalfSpace: spaceWidth / 2, Encoding: Encoding{Name: "charmap"}}, nil
	})

	table, err := NewCharMapTable(page, 300, an)
	if err != nil {
		t.Fatalf("NewCharMapTable() error = %v", err)
	}
	if diff := cmp.Diff([]string{"F1", "F10", "F2"}, order); diff != "" {
		t.Errorf("analysis order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"F1", "F10", "F2"}, table.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	cm := table["F2"]
	if cm.Subtype != "F2" || cm.HalfSpace != 150 || cm.Map == nil {
		t.Errorf("table[F2] = %+v", cm)
	}
}

func TestNewCharMapTableEdgeCases(t *testing.T) {
	t.Run("no fonts", func(t *testing.T) {
		page := &fakePage{chain: []core.Dict{{"Resources": core.Dict{"ProcSet": core.Array{core.Name("PDF")}}}}}
		table, err := NewCharMapTable(page, DefaultSpaceWidth, nil)
		if err != nil {
			t.Fatalf("NewCharMapTable() error = %v", err)
		}
		if len(table) != 0 {
			t.Errorf("len(table) = %d, want 0", len(table))
		}
	})

	t.Run("missing resources", func(t *testing.T) {
		page := &fakePage{chain: []core.Dict{{"Type": core.Name("Page")}}}
		_, err := NewCharMapTable(page, DefaultSpaceWidth, nil)
		if !errors.Is(err, ErrMissingResourceChain) {
			t.Errorf("error = %v, want ErrMissingResourceChain", err)
		}
	})

	t.Run("analyzer failure", func(t *testing.T) {
		page := pageWithFonts(core.Dict{"F1": ref(1)}, map[int]core.Object{1: core.Dict{}})
		boom := errors.New("boom")
		an := AnalyzerFunc(func(string, float64, Page) (FontInfo, error) { return FontInfo{}, boom })
		if _, err := NewCharMapTable(page, DefaultSpaceWidth, an); !errors.Is(err, boom) {
			t.Errorf("error = %v, want boom", err)
		}
	})

	t.Run("font entry is not a dictionary", func(t *testing.T) {
		page := pageWithFonts(core.Dict{"F1": core.Int(7)}, nil)
		if _, err := NewCharMapTable(page, DefaultSpaceWidth, nil); err == nil {
			t.Error("expected error for a non-dictionary font")
		}
	})
}

func TestDefaultAnalyzerEncoding(t *testing.T) {
	tests := []struct {
		name      string
		font      core.Dict
		objects   map[int]core.Object
		wantName  string
		wantCodes map[int]string // spot checks for table encodings
	}{
		{
			name:     "standard 14 without encoding",
			font:     core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("Helvetica")},
			wantName: "charmap",
		},
		{
			name:     "embedded Type1 without encoding",
			font:     core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("ABCDEF+MyFont")},
			wantName: "charmap",
		},
		{
			name:      "Symbol built-in table",
			font:      core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("Symbol")},
			wantCodes: map[int]string{'a': "α", 0xA5: "∞"},
		},
		{
			name:      "WinAnsi by name",
			font:      core.Dict{"Subtype": core.Name("TrueType"), "Encoding": core.Name("WinAnsiEncoding")},
			wantCodes: map[int]string{'A': "A", 0x80: "€", 0x93: "“"},
		},
		{
			name:      "encoding by reference",
			font:      core.Dict{"Subtype": core.Name("TrueType"), "Encoding": ref(7)},
			objects:   map[int]core.Object{7: core.Name("MacRomanEncoding")},
			wantCodes: map[int]string{0x80: "Ä"},
		},
		{
			name: "differences over base encoding",
			font: core.Dict{"Subtype": core.Name("Type1"), "Encoding": core.Dict{
				"BaseEncoding": core.Name("WinAnsiEncoding"),
				"Differences":  ref(8),
			}},
			objects: map[int]core.Object{8: core.Array{
				core.Int(65), core.Name("uni0042"), core.Name("g7"),
				core.Int(128), core.Name("f_i"), core.Name("quoteright.alt"),
			}},
			wantCodes: map[int]string{65: "B", 66: "B", 128: "fi", 129: "’", 0x93: "“"},
		},
		{
			name: "differences default to standard encoding",
			font: core.Dict{"Subtype": core.Name("Type1"), "Encoding": core.Dict{
				"Differences": core.Array{core.Int(39), core.Name("quotesingle")},
			}},
			wantCodes: map[int]string{39: "'", 0x60: "‘", 0xAE: "ﬁ"},
		},
		{
			name:     "Identity-H",
			font:     core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("Identity-H")},
			wantName: "utf-16-be",
		},
		{
			name:     "predefined CJK CMap",
			font:     core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("GBK-EUC-H")},
			wantName: "gbk",
		},
		{
			name:     "unknown name kept",
			font:     core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("Custom-X")},
			wantName: "Custom-X",
		},
		{
			name:     "embedded CMap stream",
			font:     core.Dict{"Subtype": core.Name("Type0"), "Encoding": ref(9)},
			objects:  map[int]core.Object{9: &core.Stream{Dict: core.Dict{"CMapName": core.Name("Custom")}}},
			wantName: "utf-16-be",
		},
		{
			name:     "TrueType without encoding or ToUnicode",
			font:     core.Dict{"Subtype": core.Name("TrueType"), "BaseFont": core.Name("Arial")},
			wantName: "charmap",
		},
		{
			name: "TrueType without encoding and two-byte ToUnicode",
			font: core.Dict{"Subtype": core.Name("TrueType"), "ToUnicode": ref(10)},
			objects: map[int]core.Object{10: toUnicodeStream(
				"1 begincodespacerange <0000> <FFFF> endcodespacerange")},
			wantName: "utf-16-be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects := map[int]core.Object{1: tt.font}
			for n, obj := range tt.objects {
				objects[n] = obj
			}
			page := pageWithFonts(core.Dict{"F1": ref(1)}, objects)

			info, err := DefaultAnalyzer.AnalyzeFont("F1", DefaultSpaceWidth, page)
			if err != nil {
				t.Fatalf("AnalyzeFont() error = %v", err)
			}
			if tt.wantCodes == nil {
				if info.Encoding.IsTable() || info.Encoding.Name != tt.wantName {
					t.Errorf("Encoding = %v, want %q", info.Encoding, tt.wantName)
				}
				return
			}
			if !info.Encoding.IsTable() {
				t.Fatalf("Encoding = %v, want a table", info.Encoding)
			}
			for code, want := range tt.wantCodes {
				if got := info.Encoding.Table[code]; got != want {
					t.Errorf("Table[%#x] = %q, want %q", code, got, want)
				}
			}
		})
	}
}

func TestDefaultAnalyzerToUnicode(t *testing.T) {
	page := pageWithFonts(core.Dict{"F1": ref(1)}, map[int]core.Object{
		1: core.Dict{
			"Subtype":   core.Name("TrueType"),
			"Encoding":  core.Name("WinAnsiEncoding"),
			"ToUnicode": ref(2),
		},
		2: toUnicodeStream("1 beginbfchar <80> <0058> endbfchar"),
	})

	info, err := DefaultAnalyzer.AnalyzeFont("F1", DefaultSpaceWidth, page)
	if err != nil {
		t.Fatalf("AnalyzeFont() error = %v", err)
	}
	if diff := cmp.Diff(map[rune]string{0x80: "X"}, info.Map); diff != "" {
		t.Errorf("Map mismatch (-want +got):\n%s", diff)
	}
	if got := info.Encoding.Table[0x80]; got != "\u0080" {
		t.Errorf("Table[0x80] = %q, want the code itself", got)
	}
	if info.Subtype != "TrueType" {
		t.Errorf("Subtype = %q", info.Subtype)
	}
	if info.Font == nil || info.Font.Get("ToUnicode") == nil {
		t.Error("Font does not carry the font dictionary")
	}
}

func TestDefaultAnalyzerHalfSpace(t *testing.T) {
	tests := []struct {
		name    string
		font    core.Dict
		objects map[int]core.Object
		want    float64
	}{
		{
			name: "standard 14 metrics",
			font: core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("Helvetica")},
			want: 139,
		},
		{
			name: "subset standard name",
			font: core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("ABCDEF+Courier")},
			want: 300,
		},
		{
			name: "no widths at all",
			font: core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("Foo")},
			want: 200,
		},
		{
			name: "widths entry for space",
			font: core.Dict{"Subtype": core.Name("TrueType"), "FirstChar": core.Int(32),
				"Widths": core.Array{core.Int(250), core.Int(300)}},
			want: 125,
		},
		{
			name: "zero width falls back to MissingWidth",
			font: core.Dict{"Subtype": core.Name("TrueType"), "FirstChar": core.Int(32),
				"Widths":         core.Array{core.Int(0), core.Int(300)},
				"FontDescriptor": ref(5)},
			objects: map[int]core.Object{5: core.Dict{"MissingWidth": core.Int(300)}},
			want:    150,
		},
		{
			name: "space outside range uses average",
			font: core.Dict{"Subtype": core.Name("TrueType"), "FirstChar": core.Int(65), "LastChar": core.Int(67),
				"Widths": ref(6)},
			objects: map[int]core.Object{6: core.Array{core.Int(400), core.Real(600), core.Int(0)}},
			want:    125,
		},
		{
			name: "space code from differences",
			font: core.Dict{"Subtype": core.Name("Type1"), "FirstChar": core.Int(128),
				"Encoding": core.Dict{"Differences": core.Array{core.Int(128), core.Name("space")}},
				"Widths":   core.Array{core.Int(180)}},
			want: 90,
		},
		{
			name: "CID width for ToUnicode space code",
			font: core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("Identity-H"),
				"ToUnicode":       ref(7),
				"DescendantFonts": core.Array{ref(8)}},
			objects: map[int]core.Object{
				7: toUnicodeStream("1 beginbfchar <0003> <0020> endbfchar"),
				8: core.Dict{"DW": core.Int(800), "W": core.Array{core.Int(3), ref(9)}},
				9: core.Array{core.Int(500), core.Int(700)},
			},
			want: 250,
		},
		{
			name: "CID range form",
			font: core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("Identity-H"),
				"DescendantFonts": core.Array{core.Dict{"W": core.Array{core.Int(1), core.Array{core.Int(9)}, core.Int(30), core.Int(40), core.Int(333)}}}},
			want: 166.5,
		},
		{
			name: "CID default width",
			font: core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("Identity-H"),
				"DescendantFonts": core.Array{core.Dict{"DW": core.Int(800)}}},
			want: 200,
		},
		{
			name: "CID without DW",
			font: core.Dict{"Subtype": core.Name("Type0"), "Encoding": core.Name("Identity-H"),
				"DescendantFonts": core.Array{core.Dict{}}},
			want: 250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects := map[int]core.Object{1: tt.font}
			for n, obj := range tt.objects {
				objects[n] = obj
			}
			page := pageWithFonts(core.Dict{"F1": ref(1)}, objects)

			info, err := DefaultAnalyzer.AnalyzeFont("F1", DefaultSpaceWidth, page)
			if err != nil {
				t.Fatalf("AnalyzeFont() error = %v", err)
			}
			if info.HalfSpace != tt.want {
				t.Errorf("HalfSpace = %v, want %v", info.HalfSpace, tt.want)
			}
		})
	}
}
