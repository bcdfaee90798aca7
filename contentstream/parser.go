package contentstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/pdftext/core"
)

// Operation represents a single content stream operation consisting of an
// operator and its operands. Operands are PDF objects that precede the operator.
type Operation struct {
	Operator string        // The operator (e.g., "Tj", "Tm", "q")
	Operands []core.Object // The operands
}

// Parser reads operations from one content stream.
type Parser struct {
	p        *core.Parser
	operands []core.Object
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{p: core.NewParser(bytes.NewReader(data))}
}

// Next returns the next operation, or io.EOF when the stream is exhausted.
// Operands left over at the end of the stream are dropped.
//
// An inline image is returned as a single "BI" operation whose operands
// are the image dictionary and the raw image data as a core.String.
func (p *Parser) Next() (Operation, error) {
	for {
		obj, op, err := p.p.ParseContentItem()
		if err != nil {
			return Operation{}, err
		}
		if op == "" {
			p.operands = append(p.operands, obj)
			continue
		}

		switch op {
		case "BI":
			p.operands = nil
			return p.inlineImage()
		case "ID":
			return Operation{}, errors.New("ID operator outside an inline image")
		case "stream":
			p.p.Resync()
		}
		operation := Operation{Operator: op, Operands: p.operands}
		p.operands = nil
		return operation, nil
	}
}

// Parse returns every operation in the stream. On error it returns the
// operations read before the failure along with the error.
func (p *Parser) Parse() ([]Operation, error) {
	ops := make([]Operation, 0)
	for {
		op, err := p.Next()
		if err == io.EOF {
			return ops, nil
		}
		if err != nil {
			return ops, err
		}
		ops = append(ops, op)
	}
}

func (p *Parser) inlineImage() (Operation, error) {
	var items []core.Object
	for {
		obj, op, err := p.p.ParseContentItem()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Operation{}, fmt.Errorf("inline image dictionary: %w", err)
		}
		if op == "ID" {
			break
		}
		if op != "" {
			return Operation{}, fmt.Errorf("unexpected operator %q in inline image dictionary", op)
		}
		items = append(items, obj)
	}
	if len(items)%2 != 0 {
		return Operation{}, errors.New("inline image dictionary has an odd number of entries")
	}
	dict := make(core.Dict, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		key, ok := items[i].(core.Name)
		if !ok {
			return Operation{}, fmt.Errorf("inline image key is %T, not a name", items[i])
		}
		dict[string(key)] = items[i+1]
	}

	data, err := readInlineData(p.p.Lexer())
	if err != nil {
		return Operation{}, err
	}
	p.p.Resync()
	return Operation{Operator: "BI", Operands: []core.Object{dict, core.String(data)}}, nil
}

// readInlineData reads image bytes up to the EI operator. EI only counts
// when it is preceded by whitespace (or starts the data) and followed by
// whitespace, a delimiter or the end of the stream.
func readInlineData(lx *core.Lexer) ([]byte, error) {
	if b, err := lx.Peek(); err == nil && isWhitespace(b) {
		lx.ReadByte()
	}
	var buf []byte
	for {
		b, err := lx.ReadByte()
		if err != nil {
			return nil, errors.New("inline image data not terminated by EI")
		}
		buf = append(buf, b)
		n := len(buf)
		if n < 2 || buf[n-2] != 'E' || buf[n-1] != 'I' || (n > 2 && !isWhitespace(buf[n-3])) {
			continue
		}
		if next, err := lx.Peek(); err != nil || isWhitespace(next) || isDelimiter(next) {
			data := buf[:n-2]
			if len(data) > 0 {
				data = data[:len(data)-1]
			}
			return data, nil
		}
	}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
