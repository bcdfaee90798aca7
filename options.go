package pdftext

import (
	"io"
	"log/slog"

	"github.com/tsawler/pdftext/font"
	"github.com/tsawler/pdftext/text"
	"golang.org/x/text/unicode/norm"
)

// ExtractOptions holds configuration for text extraction.
type ExtractOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// Font analysis
	spaceWidth float64

	// Assembly
	form      norm.Form
	normalize bool

	logger      *slog.Logger
	stopOnError bool
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:      nil, // nil means all pages
		spaceWidth: font.DefaultSpaceWidth,
		logger:     discardLogger(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	newOpts.pages = nil

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}

// pageConfig turns the options into the configuration of one page.
func (o ExtractOptions) pageConfig(number int) PageConfig {
	var assembler *text.Assembler
	if o.normalize {
		assembler = text.NewAssembler(text.Normalize(o.form))
	}
	return PageConfig{
		Number:      number,
		SpaceWidth:  o.spaceWidth,
		Assembler:   assembler,
		Logger:      o.logger,
		StopOnError: o.stopOnError,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
