package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// XRefEntryType is the kind of a cross-reference entry
type XRefEntryType int

const (
	XRefEntryFree         XRefEntryType = iota // f entries, type 0 in streams
	XRefEntryUncompressed                      // n entries, type 1 in streams
	XRefEntryCompressed                        // type 2: stored inside an object stream
)

func (t XRefEntryType) String() string {
	switch t {
	case XRefEntryFree:
		return "free"
	case XRefEntryUncompressed:
		return "uncompressed"
	case XRefEntryCompressed:
		return "compressed"
	}
	return fmt.Sprintf("XRefEntryType(%d)", int(t))
}

// XRefEntry is one cross-reference entry. For compressed entries Offset is
// the number of the containing object stream and Generation is the index
// of the object within it.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64
	Generation int
	InUse      bool
}

// XRefTable maps object numbers to entries.
type XRefTable struct {
	Entries  map[int]*XRefEntry
	Trailer  Dict
	IsStream bool // read from a /Type /XRef stream
}

// NewXRefTable creates an empty table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get returns the entry for objNum.
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	e, ok := x.Entries[objNum]
	return e, ok
}

// Set adds or replaces an entry.
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// XRefParser reads cross-reference sections from a seekable source.
type XRefParser struct {
	reader io.ReadSeeker
}

// NewXRefParser creates a parser over r.
func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{reader: r}
}

// FindXRef returns the offset named after the last startxref keyword.
func (x *XRefParser) FindXRef() (int64, error) {
	size, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to end: %w", err)
	}
	tail := int64(2048)
	if size < tail {
		tail = size
	}
	if _, err := x.reader.Seek(size-tail, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to startxref area: %w", err)
	}
	buf := make([]byte, tail)
	if _, err := io.ReadFull(x.reader, buf); err != nil {
		return 0, fmt.Errorf("failed to read startxref area: %w", err)
	}

	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("startxref not found in PDF")
	}
	fields := strings.Fields(string(buf[idx+len("startxref"):]))
	if len(fields) == 0 {
		return 0, errors.New("invalid startxref format")
	}
	offset, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid xref offset: %w", err)
	}
	if offset < 0 || offset >= size {
		return 0, fmt.Errorf("xref offset %d outside file of %d bytes", offset, size)
	}
	return offset, nil
}

// ParseXRef parses the cross-reference section at offset, which may be a
// classic table or an xref stream.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref: %w", err)
	}
	isStream, err := x.isXRefStream()
	if err != nil {
		return nil, err
	}
	if isStream {
		return x.parseXRefStream()
	}

	table, err := x.parseXRefTable()
	if err != nil {
		return nil, err
	}
	// Hybrid files list their compressed objects in a separate stream.
	if stmOffset, ok := table.Trailer.GetInt("XRefStm"); ok {
		if _, err := x.reader.Seek(int64(stmOffset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to /XRefStm: %w", err)
		}
		stm, err := x.parseXRefStream()
		if err != nil {
			return nil, fmt.Errorf("failed to parse /XRefStm: %w", err)
		}
		for num, e := range stm.Entries {
			if cur, ok := table.Get(num); !ok || !cur.InUse {
				table.Set(num, e)
			}
		}
	}
	return table, nil
}

// isXRefStream looks at the bytes at the current position without
// consuming them: "xref" starts a classic table, a digit starts an object.
func (x *XRefParser) isXRefStream() (bool, error) {
	pos, err := x.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}
	buf := make([]byte, 32)
	n, _ := io.ReadFull(x.reader, buf)
	if _, err := x.reader.Seek(pos, io.SeekStart); err != nil {
		return false, err
	}

	head := bytes.TrimLeft(buf[:n], " \t\r\n\f\x00")
	switch {
	case bytes.HasPrefix(head, []byte("xref")):
		return false, nil
	case len(head) > 0 && isDigit(head[0]):
		return true, nil
	}
	return false, fmt.Errorf("no cross-reference section at offset %d", pos)
}

func (x *XRefParser) parseXRefTable() (*XRefTable, error) {
	p := NewParser(x.reader)
	if err := p.expectKeyword("xref"); err != nil {
		return nil, err
	}

	table := NewXRefTable()
	for {
		tok, err := p.current()
		if err != nil {
			return nil, fmt.Errorf("xref table: %w", err)
		}
		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			p.advance()
			break
		}
		first, err := p.tokenInt()
		if err != nil {
			return nil, fmt.Errorf("invalid subsection header: %w", err)
		}
		count, err := p.tokenInt()
		if err != nil {
			return nil, fmt.Errorf("invalid subsection header: %w", err)
		}
		for i := 0; i < int(count); i++ {
			entry, err := p.xrefTableEntry()
			if err != nil {
				return nil, fmt.Errorf("failed to parse xref entry %d: %w", int(first)+i, err)
			}
			table.Set(int(first)+i, entry)
		}
	}

	trailer, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer: %w", err)
	}
	dict, ok := trailer.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary, got %T", trailer)
	}
	table.Trailer = dict
	return table, nil
}

func (p *Parser) tokenInt() (int64, error) {
	tok, err := p.current()
	if err != nil {
		return 0, err
	}
	if tok.Type != TokenInteger {
		return 0, fmt.Errorf("expected integer, got %s", tok.Type)
	}
	v, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		return 0, err
	}
	p.advance()
	return v, nil
}

// xrefTableEntry reads "nnnnnnnnnn ggggg n" or "... f".
func (p *Parser) xrefTableEntry() (*XRefEntry, error) {
	offset, err := p.tokenInt()
	if err != nil {
		return nil, err
	}
	gen, err := p.tokenInt()
	if err != nil {
		return nil, err
	}
	tok, err := p.current()
	if err != nil {
		return nil, err
	}
	entry := &XRefEntry{Offset: offset, Generation: int(gen)}
	switch string(tok.Value) {
	case "n":
		entry.Type, entry.InUse = XRefEntryUncompressed, true
	case "f":
		entry.Type = XRefEntryFree
	default:
		return nil, fmt.Errorf("invalid in-use flag: %q", tok.Value)
	}
	p.advance()
	return entry, nil
}

// parseXRefStream parses the /Type /XRef stream object at the current position.
func (x *XRefParser) parseXRefStream() (*XRefTable, error) {
	obj, err := NewParser(x.reader).ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref stream object: %w", err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref stream object is %T, not a stream", obj.Object)
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("xref stream has /Type %v", stream.Dict.Get("Type"))
	}
	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, errors.New("xref stream missing /Size")
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok || len(wArr) != 3 {
		return nil, fmt.Errorf("xref stream has invalid /W: %v", stream.Dict.Get("W"))
	}
	w := make([]int, 3)
	for i := range w {
		v, ok := wArr.Get(i).(Int)
		if !ok || v < 0 || v > 8 {
			return nil, fmt.Errorf("xref stream has invalid /W: %v", wArr)
		}
		w[i] = int(v)
	}

	index := Array{Int(0), size}
	if idx, ok := stream.Dict.GetArray("Index"); ok {
		if len(idx)%2 != 0 {
			return nil, fmt.Errorf("xref stream has odd-length /Index: %v", idx)
		}
		index = idx
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.IsStream = true
	table.Trailer = stream.Dict
	for i := 0; i < len(index); i += 2 {
		first, ok1 := index[i].(Int)
		count, ok2 := index[i+1].(Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("xref stream has invalid /Index: %v", index)
		}
		for j := 0; j < int(count); j++ {
			entry, n, err := x.parseXRefStreamEntry(data, w)
			if err != nil {
				return nil, fmt.Errorf("xref stream entry %d: %w", int(first)+j, err)
			}
			data = data[n:]
			table.Set(int(first)+j, entry)
		}
	}
	return table, nil
}

// parseXRefStreamEntry decodes one binary entry whose field widths are w,
// returning the entry and the number of bytes it used.
func (x *XRefParser) parseXRefStreamEntry(data []byte, w []int) (*XRefEntry, int, error) {
	n := w[0] + w[1] + w[2]
	if len(data) < n {
		return nil, 0, fmt.Errorf("need %d bytes, have %d", n, len(data))
	}
	typ := int64(1)
	if w[0] > 0 {
		typ = readBigEndianInt(data, w[0])
	}
	f2 := readBigEndianInt(data[w[0]:], w[1])
	f3 := readBigEndianInt(data[w[0]+w[1]:], w[2])

	entry := &XRefEntry{Offset: f2, Generation: int(f3)}
	switch typ {
	case 1:
		entry.Type, entry.InUse = XRefEntryUncompressed, true
	case 2:
		entry.Type, entry.InUse = XRefEntryCompressed, true
	default:
		// type 0, and unknown types which readers treat as null references
		entry.Type = XRefEntryFree
	}
	return entry, n, nil
}

func readBigEndianInt(data []byte, width int) int64 {
	var v int64
	for i := 0; i < width && i < len(data); i++ {
		v = v<<8 | int64(data[i])
	}
	return v
}

// ParseXRefFromEOF parses the section named by startxref.
func (x *XRefParser) ParseXRefFromEOF() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, fmt.Errorf("failed to find xref: %w", err)
	}
	table, err := x.ParseXRef(offset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref: %w", err)
	}
	return table, nil
}

// ParseAllXRefs follows the /Prev chain from the last section and returns
// every section, oldest first.
func (x *XRefParser) ParseAllXRefs() ([]*XRefTable, error) {
	table, err := x.ParseXRefFromEOF()
	if err != nil {
		return nil, err
	}
	tables := []*XRefTable{table}
	seen := map[int64]bool{}
	for {
		prev, ok := table.Trailer.GetInt("Prev")
		if !ok || seen[int64(prev)] {
			break
		}
		seen[int64(prev)] = true
		table, err = x.ParseXRef(int64(prev))
		if err != nil {
			return nil, fmt.Errorf("failed to parse previous xref at %d: %w", prev, err)
		}
		tables = append([]*XRefTable{table}, tables...)
	}
	return tables, nil
}

// MergeXRefTables merges sections given oldest first. Later entries win and
// the newest trailer is kept.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, t := range tables {
		for num, e := range t.Entries {
			merged.Set(num, e)
		}
		merged.Trailer = t.Trailer
		merged.IsStream = t.IsStream
	}
	return merged
}

var (
	objHeaderRE = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)
	trailerRE   = regexp.MustCompile(`trailer\s*<<`)
)

// RebuildXRef scans the whole file for "n g obj" headers and the last
// trailer dictionary. It is the fallback for files whose startxref or
// tables are damaged.
func (x *XRefParser) RebuildXRef() (*XRefTable, error) {
	if _, err := x.reader.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(x.reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	table := NewXRefTable()
	for _, m := range objHeaderRE.FindAllSubmatchIndex(data, -1) {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		table.Set(num, &XRefEntry{
			Type:       XRefEntryUncompressed,
			Offset:     int64(m[2]),
			Generation: gen,
			InUse:      true,
		})
	}
	if table.Size() == 0 {
		return nil, errors.New("no objects found while rebuilding xref")
	}

	if locs := trailerRE.FindAllIndex(data, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		obj, err := NewParser(bytes.NewReader(data[last[1]-2:])).ParseObject()
		if err == nil {
			if dict, ok := obj.(Dict); ok {
				table.Trailer = dict
			}
		}
	}
	return table, nil
}
