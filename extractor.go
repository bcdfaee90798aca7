package pdftext

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tsawler/pdftext/reader"
	"golang.org/x/text/unicode/norm"
)

// Extractor provides a fluent interface for extracting text from a PDF.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	reader   *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// ensureReader opens the reader if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.filename == "" {
		return errors.New("no filename specified")
	}

	r, err := reader.Open(e.filename, reader.WithLogger(e.options.logger))
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.options.logger.Debug("opened document", "file", e.filename, "version", r.Version().String())
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsReader && e.reader != nil {
		err := e.reader.Close()
		e.reader = nil
		e.ownsReader = false
		e.readerOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to extract from (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	text, err := pdftext.Open("doc.pdf").Pages(1, 3, 5).Text()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to extract (1-indexed, inclusive).
//
// Example:
//
//	text, err := pdftext.Open("doc.pdf").PageRange(5, 10).Text()
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	if start > end {
		newExt.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return newExt
	}
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// SpaceWidth sets the space width, in thousandths of a text space unit,
// assumed for fonts that carry no width information. The default is
// font.DefaultSpaceWidth.
func (e *Extractor) SpaceWidth(w float64) *Extractor {
	newExt := e.clone()
	if w <= 0 {
		newExt.err = fmt.Errorf("space width must be positive, got %g", w)
		return newExt
	}
	newExt.options.spaceWidth = w
	return newExt
}

// Normalize applies a Unicode normalization form to every block.
//
// Example:
//
//	text, err := pdftext.Open("doc.pdf").Normalize(norm.NFKC).Text()
func (e *Extractor) Normalize(form norm.Form) *Extractor {
	newExt := e.clone()
	newExt.options.form = form
	newExt.options.normalize = true
	return newExt
}

// Logger sets the logger for progress and failure records. A nil logger
// discards them, which is also the default.
func (e *Extractor) Logger(l *slog.Logger) *Extractor {
	newExt := e.clone()
	if l == nil {
		l = discardLogger()
	}
	newExt.options.logger = l
	return newExt
}

// StopOnError makes the first failed stream or page the error of the
// terminal call. By default failures are recorded in Block.Err or logged,
// and extraction continues.
func (e *Extractor) StopOnError(stop bool) *Extractor {
	newExt := e.clone()
	newExt.options.stopOnError = stop
	return newExt
}

// ============================================================================
// Terminal Methods
// ============================================================================

// Text extracts the text of the selected pages. Blocks are joined with a
// newline. When extraction stops early the text of the blocks completed so
// far is returned along with the error. This is a terminal operation that
// closes a reader the Extractor opened.
//
// Example:
//
//	text, err := pdftext.Open("document.pdf").Text()
func (e *Extractor) Text() (string, error) {
	blocks, err := e.Blocks()
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n"), err
}

// Blocks extracts one Block per content stream of the selected pages, in
// page order. A page that cannot be processed is logged and skipped unless
// StopOnError is set. This is a terminal operation.
//
// Example:
//
//	blocks, err := pdftext.Open("document.pdf").Pages(1).Blocks()
//	for _, b := range blocks {
//	    if b.Err != nil {
//	        log.Printf("page %d stream %d: %v", b.Page, b.Stream, b.Err)
//	    }
//	}
func (e *Extractor) Blocks() ([]Block, error) {
	if e.err != nil {
		return nil, e.err
	}

	if err := e.ensureReader(); err != nil {
		return nil, err
	}
	defer e.Close()

	pageIndices, err := e.resolvePages()
	if err != nil {
		return nil, err
	}

	log := e.options.logger
	var blocks []Block
	for _, pageNum := range pageIndices {
		page, err := e.reader.GetPage(pageNum)
		if err == nil {
			var pageBlocks []Block
			pageBlocks, err = ExtractPage(page, e.options.pageConfig(pageNum+1))
			blocks = append(blocks, pageBlocks...)
		}
		if err != nil {
			if e.options.stopOnError {
				return blocks, fmt.Errorf("page %d: %w", pageNum+1, err)
			}
			log.Warn("skipping page", "page", pageNum+1, "error", err)
		}
	}

	return blocks, nil
}

// PageCount returns the total number of pages in the document.
// Note: This does NOT close the reader, allowing further operations.
//
// Example:
//
//	ext := pdftext.Open("document.pdf")
//	defer ext.Close()
//	count, err := ext.PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}

	if err := e.ensureReader(); err != nil {
		return 0, err
	}

	return e.reader.PageCount()
}

// ============================================================================
// Internal helpers
// ============================================================================

// resolvePages converts 1-indexed page numbers to 0-indexed and validates them.
// If no pages specified, returns all pages.
func (e *Extractor) resolvePages() ([]int, error) {
	pageCount, err := e.reader.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	// If no pages specified, use all pages
	if len(e.options.pages) == 0 {
		pageIndices := make([]int, pageCount)
		for i := 0; i < pageCount; i++ {
			pageIndices[i] = i
		}
		return pageIndices, nil
	}

	// Convert 1-indexed to 0-indexed and validate
	seen := make(map[int]bool)
	var pageIndices []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		zeroIndexed := p - 1
		if !seen[zeroIndexed] {
			seen[zeroIndexed] = true
			pageIndices = append(pageIndices, zeroIndexed)
		}
	}

	// Sort pages in order
	sort.Ints(pageIndices)
	return pageIndices, nil
}
