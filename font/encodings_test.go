package font

import "testing"

func TestBaseEncodings(t *testing.T) {
	tests := []struct {
		encoding string
		code     int
		want     rune
	}{
		{"StandardEncoding", 'A', 'A'},
		{"StandardEncoding", 0x27, '’'},
		{"StandardEncoding", 0xE1, 'Æ'},
		{"StandardEncoding", 0x80, 0},
		{"WinAnsiEncoding", 0x80, '€'},
		{"WinAnsiEncoding", 0xE9, 'é'},
		{"MacRomanEncoding", 0x80, 'Ä'},
		{"MacRomanEncoding", 0xA5, '•'},
		{"PDFDocEncoding", 0x80, '•'},
		{"PDFDocEncoding", 0x01, 0},
		{"SymbolEncoding", 'p', 'π'},
		{"SymbolEncoding", 0xB9, '≠'},
		{"SymbolEncoding", 0xF0, 0},
		{"ZapfDingbatsEncoding", 0x21, '✁'},
		{"ZapfDingbatsEncoding", 0x48, '★'},
		{"ZapfDingbatsEncoding", 0xAC, '①'},
		{"ZapfDingbatsEncoding", 0xD4, '➔'},
		{"ZapfDingbatsEncoding", 0xFE, '➾'},
	}

	for _, tt := range tests {
		enc := baseEncodings[tt.encoding]
		if enc == nil {
			t.Fatalf("encoding %s not registered", tt.encoding)
		}
		if got := enc[tt.code]; got != tt.want {
			t.Errorf("%s[%#x] = %q, want %q", tt.encoding, tt.code, got, tt.want)
		}
	}
}

func TestSimpleEncodingTable(t *testing.T) {
	table := standardEncoding.table()
	if _, ok := table[0x80]; ok {
		t.Error("undefined code 0x80 present in table")
	}
	if table[' '] != " " {
		t.Errorf("table[32] = %q, want space", table[' '])
	}

	table['A'] = "changed"
	if standardEncoding['A'] != 'A' {
		t.Error("table() shares storage with the encoding")
	}
}

func TestGlyphText(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"A", "A", true},
		{"space", " ", true},
		{"eacute", "é", true},
		{"quotedblleft", "“", true},
		{"fi", "ﬁ", true},
		{"uni20AC", "€", true},
		{"uni00410042", "AB", true},
		{"u1F600", "😀", true},
		{"a.sc", "a", true},
		{"f_f_i", "ffi", true},
		{"uni0041_B.swash", "AB", true},
		{"uniD800", "", false},
		{"uni004", "", false},
		{"uni00g1", "", false},
		{"g123", "", false},
		{".notdef", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := glyphText(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("glyphText(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStandardFontNames(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Helvetica", true},
		{"Times-BoldItalic", true},
		{"ZapfDingbats", true},
		{"ABCDEF+Courier", true},
		{"abcdef+Courier", false},
		{"Arial", false},
	}
	for _, tt := range tests {
		if got := IsStandardFont(tt.name); got != tt.want {
			t.Errorf("IsStandardFont(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
