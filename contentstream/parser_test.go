package contentstream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdftext/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Operation
	}{
		{
			name:  "empty",
			input: "",
			want:  []Operation{},
		},
		{
			name:  "whitespace only",
			input: " \n\t\r\n ",
			want:  []Operation{},
		},
		{
			name:  "text block",
			input: "BT\n/F1 12 Tf\n72 712 Td\n(Hello) Tj\nET",
			want: []Operation{
				{Operator: "BT"},
				{Operator: "Tf", Operands: []core.Object{core.Name("F1"), core.Int(12)}},
				{Operator: "Td", Operands: []core.Object{core.Int(72), core.Int(712)}},
				{Operator: "Tj", Operands: []core.Object{core.String("Hello")}},
				{Operator: "ET"},
			},
		},
		{
			name:  "numbers",
			input: "1 0 0 1 -50.5 .5 Tm -.25 Tc",
			want: []Operation{
				{Operator: "Tm", Operands: []core.Object{core.Int(1), core.Int(0), core.Int(0), core.Int(1), core.Real(-50.5), core.Real(0.5)}},
				{Operator: "Tc", Operands: []core.Object{core.Real(-0.25)}},
			},
		},
		{
			name:  "TJ array",
			input: "[(A) -120 (W) 3.5 <0041>] TJ",
			want: []Operation{
				{Operator: "TJ", Operands: []core.Object{core.Array{
					core.String("A"), core.Int(-120), core.String("W"), core.Real(3.5), core.String("\x00A"),
				}}},
			},
		},
		{
			name:  "quote operators",
			input: "(a) ' 1 2 (b) \" T*",
			want: []Operation{
				{Operator: "'", Operands: []core.Object{core.String("a")}},
				{Operator: "\"", Operands: []core.Object{core.Int(1), core.Int(2), core.String("b")}},
				{Operator: "T*"},
			},
		},
		{
			name:  "marked content with dictionary",
			input: "/Span <</ActualText (x) /MCID 3>> BDC EMC",
			want: []Operation{
				{Operator: "BDC", Operands: []core.Object{core.Name("Span"), core.Dict{"ActualText": core.String("x"), "MCID": core.Int(3)}}},
				{Operator: "EMC"},
			},
		},
		{
			name:  "comments and booleans",
			input: "% header\ntrue false null d0 % trailing",
			want: []Operation{
				{Operator: "d0", Operands: []core.Object{core.Bool(true), core.Bool(false), core.Null{}}},
			},
		},
		{
			name:  "string escapes",
			input: `(a\(b\)c\\d\101\nend) Tj (line\
joined) Tj`,
			want: []Operation{
				{Operator: "Tj", Operands: []core.Object{core.String("a(b)c\\dA\nend")}},
				{Operator: "Tj", Operands: []core.Object{core.String("linejoined")}},
			},
		},
		{
			name:  "name escapes",
			input: "/A#20B cs",
			want: []Operation{
				{Operator: "cs", Operands: []core.Object{core.Name("A B")}},
			},
		},
		{
			name:  "trailing operands dropped",
			input: "q Q 1 2",
			want:  []Operation{{Operator: "q"}, {Operator: "Q"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser([]byte(tt.input)).Parse()
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseInlineImage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		data  string
	}{
		{"binary data", "BI /W 2 /H 1 /CS /G /BPC 8 ID \x00EI\xff EI Q", "\x00EI\xff"},
		{"empty data", "BI\n/W 100\n/H 50\nID\nEI Q", ""},
		{"data ends stream", "BI /W 1 ID xyz EI", "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser([]byte("q " + tt.input))
			ops, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(ops) < 2 || ops[0].Operator != "q" || ops[1].Operator != "BI" {
				t.Fatalf("operations = %v", ops)
			}
			bi := ops[1]
			if len(bi.Operands) != 2 {
				t.Fatalf("BI operands = %v", bi.Operands)
			}
			if _, ok := bi.Operands[0].(core.Dict)["W"]; !ok {
				t.Errorf("image dictionary = %v", bi.Operands[0])
			}
			if got := string(bi.Operands[1].(core.String)); got != tt.data {
				t.Errorf("image data = %q, want %q", got, tt.data)
			}
			if tt.data != "xyz" && (len(ops) != 3 || ops[2].Operator != "Q") {
				t.Errorf("parsing did not resume after EI: %v", ops)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOps int
	}{
		{"unbalanced paren", "(a) Tj ) Tj", 1},
		{"unterminated string", "q (abc", 1},
		{"unterminated array", "[(a) TJ", 0},
		{"stray ID", "q ID", 1},
		{"inline image without EI", "BI /W 1 ID abc", 0},
		{"inline image odd dictionary", "BI /W ID x EI", 0},
		{"operator in inline image", "BI /W 1 Tj ID x EI", 0},
		{"deeply nested arrays", "BT " + strings.Repeat("[", 16000) + " TJ", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := NewParser([]byte(tt.input)).Parse()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if len(ops) != tt.wantOps {
				t.Errorf("got %d operations before the error, want %d", len(ops), tt.wantOps)
			}
		})
	}
}

func TestParseNestingLimit(t *testing.T) {
	_, err := NewParser([]byte(strings.Repeat("[", 16000))).Parse()
	if !errors.Is(err, core.ErrNestingTooDeep) {
		t.Fatalf("Parse() error = %v, want core.ErrNestingTooDeep", err)
	}
	if len(err.Error()) > 200 {
		t.Errorf("error message has %d bytes", len(err.Error()))
	}
}

func TestNextEOF(t *testing.T) {
	p := NewParser([]byte("BT"))
	if op, err := p.Next(); err != nil || op.Operator != "BT" {
		t.Fatalf("Next() = %v, %v", op, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := p.Next(); err != io.EOF {
			t.Errorf("Next() error = %v, want io.EOF", err)
		}
	}
}
