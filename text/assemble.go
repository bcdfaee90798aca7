package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Assemble concatenates the fragment texts in order, with no separator.
func Assemble(fragments []Fragment) string {
	n := 0
	for _, f := range fragments {
		n += len(f.Text)
	}
	var b strings.Builder
	b.Grow(n)
	for _, f := range fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Assembler turns the fragments of one content stream into a text block,
// optionally applying a Unicode normalization form.
type Assembler struct {
	form      norm.Form
	normalize bool
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// Normalize makes the assembler normalize every block to form.
func Normalize(form norm.Form) AssemblerOption {
	return func(a *Assembler) {
		a.form = form
		a.normalize = true
	}
}

// NewAssembler creates an assembler. Without options it behaves like
// Assemble.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble joins fragments into one block.
func (a *Assembler) Assemble(fragments []Fragment) string {
	s := Assemble(fragments)
	if a.normalize {
		return a.form.String(s)
	}
	return s
}
