// Package pdftest writes small, well-formed PDF files in memory for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

type object struct {
	body   string
	stream []byte
	isStm  bool
	packed bool
}

// Builder collects numbered objects and serialises them with either a
// classic xref table or an xref stream.
type Builder struct {
	objs []*object

	// XRefStream writes a compressed /Type /XRef stream instead of a
	// classic table. It is required for packed objects.
	XRefStream bool
}

// New returns an empty builder. Object numbers start at 1.
func New() *Builder {
	return &Builder{}
}

// Reserve allocates an object number to be filled in later with Set.
func (b *Builder) Reserve() int {
	b.objs = append(b.objs, &object{body: "null"})
	return len(b.objs)
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.objs[num-1].body = body
}

// Add appends an object and returns its number.
func (b *Builder) Add(body string) int {
	num := b.Reserve()
	b.Set(num, body)
	return num
}

// AddStream appends a stream. entries are dictionary entries without the
// surrounding << >>; /Length is added.
func (b *Builder) AddStream(entries string, data []byte) int {
	num := b.Add(entries)
	b.objs[num-1].stream = data
	b.objs[num-1].isStm = true
	return num
}

// AddFlateStream compresses data and adds it with /Filter /FlateDecode.
func (b *Builder) AddFlateStream(entries string, data []byte) int {
	return b.AddStream(strings.TrimSpace(entries+" /Filter /FlateDecode"), Deflate(data))
}

// AddPacked appends an object stored inside an object stream.
func (b *Builder) AddPacked(body string) int {
	num := b.Add(body)
	b.objs[num-1].packed = true
	return num
}

// Ref formats an indirect reference.
func Ref(num int) string {
	return fmt.Sprintf("%d 0 R", num)
}

// Deflate compresses data with zlib.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// Bytes serialises the file. trailer holds extra trailer entries such as
// "/Root 1 0 R".
func (b *Builder) Bytes(trailer string) []byte {
	var packed []int
	for i, o := range b.objs {
		if o.packed {
			packed = append(packed, i+1)
		}
	}
	objStm := 0
	if len(packed) > 0 {
		objStm = b.addObjectStream(packed)
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, len(b.objs)+1)
	for i, o := range b.objs {
		if o.packed {
			continue
		}
		offsets[i+1] = out.Len()
		writeObject(&out, i+1, o)
	}

	if !b.XRefStream {
		xref := out.Len()
		fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(b.objs)+1)
		for i := 1; i <= len(b.objs); i++ {
			fmt.Fprintf(&out, "%010d 00000 n \n", offsets[i])
		}
		fmt.Fprintf(&out, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, trailer, xref)
		return out.Bytes()
	}

	xrefNum := len(b.objs) + 1
	size := xrefNum + 1
	xrefOffset := out.Len()
	var rows bytes.Buffer
	rows.Write([]byte{0, 0, 0, 0, 0, 0xFF, 0xFF})
	index := map[int]int{}
	for i, num := range packed {
		index[num] = i
	}
	for num := 1; num < size; num++ {
		switch {
		case num == xrefNum:
			writeRow(&rows, 1, xrefOffset, 0)
		case b.objs[num-1].packed:
			writeRow(&rows, 2, objStm, index[num])
		default:
			writeRow(&rows, 1, offsets[num], 0)
		}
	}
	writeObject(&out, xrefNum, &object{
		body:   fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] /Filter /FlateDecode %s", size, trailer),
		stream: Deflate(rows.Bytes()),
		isStm:  true,
	})
	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return out.Bytes()
}

func (b *Builder) addObjectStream(nums []int) int {
	var header, body bytes.Buffer
	for _, num := range nums {
		fmt.Fprintf(&header, "%d %d ", num, body.Len())
		body.WriteString(b.objs[num-1].body)
		body.WriteByte('\n')
	}
	data := append(header.Bytes(), body.Bytes()...)
	return b.AddFlateStream(fmt.Sprintf("/Type /ObjStm /N %d /First %d", len(nums), header.Len()), data)
}

func writeObject(out *bytes.Buffer, num int, o *object) {
	fmt.Fprintf(out, "%d 0 obj\n", num)
	if o.isStm {
		fmt.Fprintf(out, "<< %s /Length %d >>\nstream\n", o.body, len(o.stream))
		out.Write(o.stream)
		out.WriteString("\nendstream")
	} else {
		out.WriteString(o.body)
	}
	out.WriteString("\nendobj\n")
}

func writeRow(buf *bytes.Buffer, typ, f2, f3 int) {
	buf.Write([]byte{byte(typ), byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2), byte(f3 >> 8), byte(f3)})
}

// Page describes one page for SimpleDocument.
type Page struct {
	// Streams are the uncompressed content streams of the page.
	Streams []string
	// Fonts maps resource names such as "F1" to font dictionary bodies.
	Fonts map[string]string
}

// SimpleDocument builds a document whose pages sit directly under the
// root page tree node, each with its own /Resources.
func SimpleDocument(pages ...Page) []byte {
	b := New()
	catalog := b.Reserve()
	root := b.Reserve()

	var kids []string
	for _, p := range pages {
		var fonts []string
		for name, body := range p.Fonts {
			fonts = append(fonts, fmt.Sprintf("/%s %s", name, Ref(b.Add(body))))
		}
		var contents []string
		for _, s := range p.Streams {
			contents = append(contents, Ref(b.AddFlateStream("", []byte(s))))
		}
		page := b.Add(fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << /Font << %s >> >> /Contents [%s] >>",
			Ref(root), strings.Join(fonts, " "), strings.Join(contents, " ")))
		kids = append(kids, Ref(page))
	}

	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s >>", Ref(root)))
	b.Set(root, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))
	return b.Bytes("/Root " + Ref(catalog))
}
