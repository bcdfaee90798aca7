// Package pdftext provides a fluent API for extracting the text of PDF
// files.
//
// Basic usage:
//
//	text, err := pdftext.Open("document.pdf").Text()
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	blocks, err := pdftext.Open("report.pdf").
//	    PageRange(2, 4).
//	    Normalize(norm.NFKC).
//	    Logger(slog.Default()).
//	    Blocks()
//
// Every content stream of a page becomes its own Block. Text is recovered
// from the text-showing operators alone, so the output follows the order
// in which the producer wrote the text, not its position on the page.
//
// For advanced use cases the lower-level reader, font and text packages
// are also available.
package pdftext

import (
	"github.com/tsawler/pdftext/reader"
)

// Open opens a PDF file and returns an Extractor for fluent configuration.
// The file is opened lazily by the first terminal operation, which also
// closes it; call Close when only PageCount was used.
//
// Example:
//
//	text, err := pdftext.Open("document.pdf").Text()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// This is useful when you need more control over the reader lifecycle.
// Note: The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	text, err := pdftext.FromReader(r).Text()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdftext.Must(pdftext.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText returns the text of the file and panics on error.
//
// Example:
//
//	fmt.Println(pdftext.MustText("document.pdf"))
func MustText(filename string) string {
	return Must(Open(filename).Text())
}
