package filters

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"errors"
	"testing"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	w.Close()
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		data   []byte
		params Params
		want   []byte
	}{
		{"hex", "ASCIIHexDecode", []byte("48 65 6C\n6C 6F>"), nil, []byte("Hello")},
		{"hex abbreviation", "AHx", []byte("4869>"), nil, []byte("Hi")},
		{"hex odd digit", "ASCIIHexDecode", []byte("486>"), nil, []byte{0x48, 0x60}},
		{"ascii85", "ASCII85Decode", []byte("9jqo^~>"), nil, []byte("Man ")},
		{"ascii85 with prefix", "A85", []byte("<~9jqo^~>"), nil, []byte("Man ")},
		{"ascii85 zero group", "ASCII85Decode", []byte("z~>"), nil, []byte{0, 0, 0, 0}},
		{"run length", "RunLengthDecode", []byte{2, 'a', 'b', 'c', 254, 'x', 128}, nil, []byte("abcxxx")},
		{"dct passes through", "DCTDecode", []byte{0xFF, 0xD8}, nil, []byte{0xFF, 0xD8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.filter, tt.data, tt.params)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeUnknownFilter(t *testing.T) {
	_, err := Decode("Rot13Decode", []byte("x"), nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestFlateDecode(t *testing.T) {
	want := []byte("BT /F1 12 Tf (Hello) Tj ET")
	got, err := FlateDecode(deflate(t, want), nil)
	if err != nil {
		t.Fatalf("FlateDecode() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("FlateDecode() = %q, want %q", got, want)
	}

	if _, err := FlateDecode([]byte("not zlib"), nil); err == nil {
		t.Error("expected error for invalid zlib data")
	}
}

func TestFlateDecodePNGPredictors(t *testing.T) {
	// Two rows of three one-byte pixels.
	tests := []struct {
		name string
		raw  []byte
		want []byte
	}{
		{"none", []byte{0, 1, 2, 3, 0, 4, 5, 6}, []byte{1, 2, 3, 4, 5, 6}},
		{"sub", []byte{1, 1, 1, 1, 1, 2, 2, 2}, []byte{1, 2, 3, 2, 4, 6}},
		{"up", []byte{2, 1, 2, 3, 2, 1, 1, 1}, []byte{1, 2, 3, 2, 3, 4}},
		{"average", []byte{3, 2, 2, 2, 3, 0, 0, 0}, []byte{2, 3, 3, 1, 2, 2}},
		{"paeth", []byte{4, 1, 1, 1, 4, 1, 1, 1}, []byte{1, 2, 3, 2, 3, 4}},
	}
	params := Params{"Predictor": 12, "Columns": 3}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlateDecode(deflate(t, tt.raw), params)
			if err != nil {
				t.Fatalf("FlateDecode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("FlateDecode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlateDecodeTIFFPredictor(t *testing.T) {
	got, err := FlateDecode(deflate(t, []byte{10, 1, 1, 20, 2, 2}), Params{"Predictor": 2, "Columns": 3})
	if err != nil {
		t.Fatalf("FlateDecode() error = %v", err)
	}
	want := []byte{10, 11, 12, 20, 22, 24}
	if !bytes.Equal(got, want) {
		t.Errorf("FlateDecode() = %v, want %v", got, want)
	}
}

func TestFlateDecodeUnsupportedPredictor(t *testing.T) {
	if _, err := FlateDecode(deflate(t, []byte{1, 2}), Params{"Predictor": 7}); err == nil {
		t.Error("expected error for predictor 7")
	}
}

func TestLZWDecodeWithoutEarlyChange(t *testing.T) {
	want := []byte("-----A---B-----A---B")
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	w.Write(want)
	w.Close()

	got, err := LZWDecode(buf.Bytes(), Params{"EarlyChange": 0})
	if err != nil {
		t.Fatalf("LZWDecode() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("LZWDecode() = %q, want %q", got, want)
	}
}

func TestRunLengthDecodeErrors(t *testing.T) {
	for _, data := range [][]byte{{5, 'a'}, {200}} {
		if _, err := RunLengthDecode(data); err == nil {
			t.Errorf("RunLengthDecode(%v) expected error", data)
		}
	}
}

func TestParams(t *testing.T) {
	p := Params{"Columns": 4, "Big": int64(9), "Scale": 2.0, "BlackIs1": true, "Name": "x"}
	if got := p.Int("Columns", 1); got != 4 {
		t.Errorf("Int(Columns) = %d", got)
	}
	if got := p.Int("Big", 1); got != 9 {
		t.Errorf("Int(Big) = %d", got)
	}
	if got := p.Int("Scale", 1); got != 2 {
		t.Errorf("Int(Scale) = %d", got)
	}
	if got := p.Int("Name", 7); got != 7 {
		t.Errorf("Int(Name) = %d, want default", got)
	}
	if !p.Bool("BlackIs1", false) || p.Bool("Missing", false) {
		t.Error("Bool() returned wrong value")
	}
	var nilParams Params
	if got := nilParams.Int("Columns", 3); got != 3 {
		t.Errorf("nil Params Int() = %d, want 3", got)
	}
}
