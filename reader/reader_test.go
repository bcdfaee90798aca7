package reader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/internal/pdftest"
)

// minimalPDF is a hand-written file with correct offsets.
const minimalPDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [] /Count 0 >>
endobj
xref
0 3
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
trailer
<< /Size 3 /Root 1 0 R >>
startxref
110
%%EOF`

func newReader(t *testing.T, data []byte, opts ...Option) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data), opts...)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	return r
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, []byte(minimalPDF), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if r.Version() != (PDFVersion{1, 4}) || r.Version().String() != "1.4" {
		t.Errorf("Version() = %v", r.Version())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    PDFVersion
		wantErr bool
	}{
		{"1.7", "%PDF-1.7\n", PDFVersion{1, 7}, false},
		{"2.0", "%PDF-2.0\n", PDFVersion{2, 0}, false},
		{"leading junk", "garbage\n%PDF-1.3\n", PDFVersion{1, 3}, false},
		{"no marker", "%!PS-Adobe\n", PDFVersion{}, true},
		{"bad version", "%PDF-x.y\n", PDFVersion{}, true},
		{"empty", "", PDFVersion{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reader{src: strings.NewReader(tt.content), size: int64(len(tt.content))}
			got, err := r.parseHeader()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHeader() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetObject(t *testing.T) {
	b := pdftest.New()
	catalog := b.Add("<< /Type /Catalog /Pages 2 0 R >>")
	b.Add("<< /Type /Pages /Kids [] /Count 0 >>")
	title := b.Add("(Hello)")
	length := b.Reserve()
	stream := b.Add("<< /Length " + pdftest.Ref(length) + " >>\nstream\nabc\nendstream")
	b.Set(length, "3")
	r := newReader(t, b.Bytes("/Root "+pdftest.Ref(catalog)))

	obj, err := r.GetObject(title)
	if err != nil || obj != core.String("Hello") {
		t.Fatalf("GetObject(%d) = %v, %v", title, obj, err)
	}

	obj, err = r.GetObject(stream)
	if err != nil {
		t.Fatalf("GetObject(%d) error = %v", stream, err)
	}
	if s, ok := obj.(*core.Stream); !ok || string(s.Data) != "abc" {
		t.Errorf("stream with indirect /Length = %v", obj)
	}

	if again, err := r.GetObject(title); err != nil || again != core.String("Hello") {
		t.Errorf("second GetObject(%d) = %v, %v", title, again, err)
	}

	if _, err := r.GetObject(99); err == nil {
		t.Error("expected error for unknown object")
	}
	if _, err := r.GetObject(0); err == nil {
		t.Error("expected error for free object 0")
	}
	if obj, err := r.ResolveReference(core.IndirectRef{Number: title}); err != nil || obj != core.String("Hello") {
		t.Errorf("ResolveReference() = %v, %v", obj, err)
	}
}

func TestCompressedObjects(t *testing.T) {
	b := pdftest.New()
	b.XRefStream = true
	catalog := b.AddPacked("<< /Type /Catalog /Pages 2 0 R >>")
	b.AddPacked("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.AddPacked("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 10 10] >>")
	r := newReader(t, b.Bytes("/Root "+pdftest.Ref(catalog)))

	n, err := r.PageCount()
	if err != nil || n != 1 {
		t.Fatalf("PageCount() = %d, %v, want 1", n, err)
	}
	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0) error = %v", err)
	}
	if got := page.Dict().Get("MediaBox"); got == nil {
		t.Errorf("page dictionary from an object stream = %v", page.Dict())
	}
}

func TestIncrementalUpdate(t *testing.T) {
	base := []byte(minimalPDF + "\n")
	update := "3 0 obj\n<< /Type /Catalog /Pages 2 0 R /Updated true >>\nendobj\n"
	xrefOffset := len(base) + len(update)
	tail := fmt.Sprintf("xref\n3 1\n%010d 00000 n \ntrailer\n<< /Size 4 /Root 3 0 R /Prev 110 >>\nstartxref\n%d\n%%%%EOF\n",
		len(base), xrefOffset)

	r := newReader(t, append(append(base, update...), tail...))
	catalog, err := r.GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	if catalog.Get("Updated") != core.Bool(true) {
		t.Errorf("GetCatalog() = %v, want the updated catalog", catalog)
	}
	if _, err := r.GetObject(1); err != nil {
		t.Errorf("entries from the previous section were lost: %v", err)
	}
}

func TestRecoverDamagedXRef(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	data := []byte(strings.Replace(minimalPDF, "startxref\n110", "startxref\n999", 1))
	r := newReader(t, data, WithLogger(logger))
	if n, err := r.PageCount(); err != nil || n != 0 {
		t.Errorf("PageCount() = %d, %v", n, err)
	}
	if !strings.Contains(logs.String(), "rebuilding") {
		t.Errorf("expected a rebuild warning, got %q", logs.String())
	}
}

func TestRecoverMissingRoot(t *testing.T) {
	b := pdftest.New()
	b.Add("<< /Type /Pages /Kids [] /Count 0 >>")
	b.Add("<< /Type /Catalog /Pages 1 0 R >>")
	r := newReader(t, b.Bytes(""))

	catalog, err := r.GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	if catalog.Get("Type") != core.Name("Catalog") {
		t.Errorf("GetCatalog() = %v, want the catalog object", catalog)
	}
}

func TestNewReaderErrors(t *testing.T) {
	tests := map[string]string{
		"not a pdf":  "hello world",
		"no objects": "%PDF-1.4\nnothing here\n",
		"no catalog": "%PDF-1.4\n1 0 obj\n<< /Type /Pages >>\nendobj\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewReader(strings.NewReader(content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// seekOnly hides io.ReaderAt so NewReader has to buffer the input.
type seekOnly struct{ io.ReadSeeker }

func TestNewReaderBuffersSeekOnlySource(t *testing.T) {
	data := pdftest.SimpleDocument(pdftest.Page{Streams: []string{"BT ET"}})
	r, err := NewReader(seekOnly{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	pages, err := r.Pages()
	if err != nil || len(pages) != 1 {
		t.Fatalf("Pages() = %d, %v", len(pages), err)
	}
	streams, err := pages[0].Contents()
	if err != nil || len(streams) != 1 {
		t.Fatalf("Contents() = %d, %v", len(streams), err)
	}
	decoded, err := streams[0].Decode()
	if err != nil || string(decoded) != "BT ET" {
		t.Errorf("Decode() = %q, %v", decoded, err)
	}
}

func TestGetPageOutOfRange(t *testing.T) {
	r := newReader(t, pdftest.SimpleDocument(pdftest.Page{}, pdftest.Page{}))
	if _, err := r.GetPage(2); err == nil {
		t.Error("expected error for page 2 of 2")
	}
	if _, err := r.GetPage(1); err != nil {
		t.Errorf("GetPage(1) error = %v", err)
	}
}
