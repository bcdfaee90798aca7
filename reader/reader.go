package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"sort"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/pages"
	"github.com/tsawler/pdftext/resolver"
)

// headerSearchLimit is how far into the file the %PDF- marker may appear.
const headerSearchLimit = 1024

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader gives access to the objects and pages of one PDF file.
// A Reader is not safe for concurrent use.
type Reader struct {
	src      io.ReaderAt
	closer   io.Closer
	size     int64
	version  PDFVersion
	logger   *slog.Logger
	maxDepth int

	xrefTable  *core.XRefTable
	trailer    core.Dict
	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream

	resolver *resolver.ObjectResolver
	pageTree *pages.PageTree
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used to report recovered damage.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxDepth limits reference chains and nesting during resolution.
func WithMaxDepth(depth int) Option {
	return func(r *Reader) {
		r.maxDepth = depth
	}
}

// NewReader reads a PDF from rs. Sources that are not an io.ReaderAt are
// read into memory first.
func NewReader(rs io.ReadSeeker, opts ...Option) (*Reader, error) {
	r := &Reader{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		objCache:   make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
	}
	for _, opt := range opts {
		opt(r)
	}

	if ra, ok := rs.(io.ReaderAt); ok {
		size, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to determine size: %w", err)
		}
		r.src, r.size = ra, size
	} else {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to start: %w", err)
		}
		data, err := io.ReadAll(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to read PDF: %w", err)
		}
		r.src, r.size = bytes.NewReader(data), int64(len(data))
	}

	version, err := r.parseHeader()
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	if err := r.loadXRef(); err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}

	var ropts []resolver.Option
	if r.maxDepth > 0 {
		ropts = append(ropts, resolver.WithMaxDepth(r.maxDepth))
	}
	r.resolver = resolver.NewResolver(r, ropts...)
	return r, nil
}

// Open opens a PDF file and returns a Reader
func Open(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	reader, err := NewReader(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

// Close closes the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// section returns a fresh reader over the file from offset to the end.
func (r *Reader) section(offset int64) *io.SectionReader {
	return io.NewSectionReader(r.src, offset, r.size-offset)
}

// parseHeader finds %PDF-x.y near the start of the file.
func (r *Reader) parseHeader() (PDFVersion, error) {
	n := int64(headerSearchLimit)
	if r.size < n {
		n = r.size
	}
	head := make([]byte, n)
	if _, err := r.src.ReadAt(head, 0); err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}

	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", head[:min(len(head), 8)])
	}
	var v PDFVersion
	if _, err := fmt.Sscanf(string(head[idx+5:]), "%d.%d", &v.Major, &v.Minor); err != nil {
		return PDFVersion{}, fmt.Errorf("invalid version format: %w", err)
	}
	return v, nil
}

// loadXRef reads every cross-reference section, falling back to a scan of
// the whole file when they are damaged.
func (r *Reader) loadXRef() error {
	xrefParser := core.NewXRefParser(r.section(0))
	tables, err := xrefParser.ParseAllXRefs()
	if err == nil {
		r.xrefTable = core.MergeXRefTables(tables...)
		r.trailer = r.xrefTable.Trailer
		if r.trailer.Has("Root") {
			return nil
		}
		err = errors.New("trailer missing /Root entry")
	}

	r.logger.Warn("cross-reference data damaged, rebuilding", "error", err)
	table, rerr := xrefParser.RebuildXRef()
	if rerr != nil {
		return fmt.Errorf("%w (rebuild failed: %v)", err, rerr)
	}
	r.xrefTable, r.trailer = table, table.Trailer
	r.logger.Debug("rebuilt cross-reference table", "objects", table.Size())

	if !r.trailer.Has("Root") {
		root, ok := r.findCatalog()
		if !ok {
			return errors.New("no document catalog found")
		}
		r.trailer = maps.Clone(r.trailer)
		r.trailer["Root"] = root
	}
	return nil
}

// findCatalog looks for a /Type /Catalog dictionary among the objects of a
// rebuilt table.
func (r *Reader) findCatalog() (core.IndirectRef, bool) {
	nums := make([]int, 0, r.xrefTable.Size())
	for num := range r.xrefTable.Entries {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	for _, num := range nums {
		obj, err := r.GetObject(num)
		if err != nil {
			continue
		}
		if d, ok := obj.(core.Dict); ok {
			if typ, _ := d.GetName("Type"); typ == "Catalog" {
				entry, _ := r.xrefTable.Get(num)
				return core.IndirectRef{Number: num, Generation: entry.Generation}, true
			}
		}
	}
	return core.IndirectRef{}, false
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// GetObject loads an object by number, reading it from an object stream
// when the cross-reference entry says it is compressed.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}

	entry, ok := r.xrefTable.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not found in xref table", objNum)
	}
	if !entry.InUse {
		return nil, fmt.Errorf("object %d is not in use", objNum)
	}

	var obj core.Object
	var err error
	switch entry.Type {
	case core.XRefEntryCompressed:
		obj, err = r.compressedObject(objNum, int(entry.Offset), entry.Generation)
	default:
		obj, err = r.uncompressedObject(objNum, entry.Offset)
	}
	if err != nil {
		return nil, err
	}
	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) uncompressedObject(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= r.size {
		return nil, fmt.Errorf("object %d offset %d outside file", objNum, offset)
	}
	parser := core.NewParser(r.section(offset))
	parser.SetReferenceResolver(r)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if indObj.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, indObj.Ref.Number)
	}
	return indObj.Object, nil
}

func (r *Reader) compressedObject(objNum, stmNum, index int) (core.Object, error) {
	stm, ok := r.objStreams[stmNum]
	if !ok {
		obj, err := r.GetObject(stmNum)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", stmNum, err)
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("object stream %d is %T", stmNum, obj)
		}
		if stm, err = core.NewObjectStream(stream); err != nil {
			return nil, fmt.Errorf("object stream %d: %w", stmNum, err)
		}
		r.objStreams[stmNum] = stm
		r.logger.Debug("loaded object stream", "object", stmNum, "objects", stm.N())
	}

	obj, num, err := stm.GetObjectByIndex(index)
	if err == nil && num == objNum {
		return obj, nil
	}
	// Some writers get the index wrong; fall back to the header.
	obj, _, err = stm.GetObjectByNumber(objNum)
	if err != nil {
		return nil, fmt.Errorf("object %d in stream %d: %w", objNum, stmNum, err)
	}
	return obj, nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// GetCatalog returns the document catalog (root object)
func (r *Reader) GetCatalog() (core.Dict, error) {
	rootRef := r.trailer.Get("Root")
	if rootRef == nil {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	catalog, err := r.resolver.ResolveDict(rootRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	return catalog, nil
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() (int, error) {
	if err := r.ensurePageTree(); err != nil {
		return 0, err
	}
	return r.pageTree.Count()
}

// GetPage returns the page at the given index (0-based)
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.GetPage(index)
}

// Pages returns every page in document order.
func (r *Reader) Pages() ([]*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Pages()
}

func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}
	root, err := pages.NewCatalog(catalog, r.resolver).Pages()
	if err != nil {
		return err
	}
	r.pageTree = pages.NewPageTree(root, r.resolver)
	return nil
}
