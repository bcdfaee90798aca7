package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references. The parser uses it for
// stream /Length values given as references.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// rawDataKeywords are keywords followed by binary data. The parser must
// not tokenize past them.
var rawDataKeywords = map[string]bool{
	"stream": true,
	"ID":     true,
}

// MaxNesting is the deepest array and dictionary nesting the parser
// accepts.
const MaxNesting = 256

// ErrNestingTooDeep is returned for arrays and dictionaries nested more
// than MaxNesting levels.
var ErrNestingTooDeep = errors.New("arrays and dictionaries nested too deeply")

// Parser builds PDF objects from lexer tokens, using two tokens of lookahead.
type Parser struct {
	lexer    *Lexer
	cur      *Token
	peek     *Token
	err      error
	resolver ReferenceResolver
	depth    int
}

// NewParser creates a parser reading from r.
func NewParser(r io.Reader) *Parser {
	p := &Parser{lexer: NewLexer(r)}
	p.advance()
	p.advance()
	return p
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// Lexer exposes the underlying lexer for callers that read raw data after
// a raw-data keyword such as ID.
func (p *Parser) Lexer() *Lexer {
	return p.lexer
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = nil
	if p.cur != nil && p.cur.Type == TokenKeyword && rawDataKeywords[string(p.cur.Value)] {
		return
	}
	if p.err != nil {
		return
	}
	tok, err := p.lexer.NextToken()
	if err != nil {
		p.err = err
		return
	}
	p.peek = tok
}

// Resync reloads the lookahead after raw data has been read through Lexer.
func (p *Parser) Resync() {
	p.cur, p.peek = nil, nil
	p.advance()
	p.advance()
}

func (p *Parser) skipComments() {
	for p.cur != nil && p.cur.Type == TokenComment {
		p.advance()
	}
}

func (p *Parser) current() (*Token, error) {
	p.skipComments()
	if p.cur == nil {
		if p.err != nil {
			return nil, p.err
		}
		return nil, io.ErrUnexpectedEOF
	}
	return p.cur, nil
}

// ParseObject parses the next object. At end of input it returns io.EOF.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.current()
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenKeyword {
		obj, ok := keywordObject(string(tok.Value))
		if !ok {
			return nil, fmt.Errorf("unexpected keyword %q at position %d", tok.Value, tok.Pos)
		}
		p.advance()
		return obj, nil
	}
	return p.parseValue(tok)
}

// ParseContentItem parses the next element of a content stream: either an
// operand object or an operator. At end of input it returns io.EOF. After
// the ID operator of an inline image the caller must consume the image data
// and call Resync before parsing further.
func (p *Parser) ParseContentItem() (obj Object, operator string, err error) {
	tok, err := p.current()
	if err != nil {
		return nil, "", err
	}
	if tok.Type == TokenKeyword || tok.Type == TokenIndirectRef {
		word := string(tok.Value)
		if obj, ok := keywordObject(word); ok {
			p.advance()
			return obj, "", nil
		}
		if rawDataKeywords[word] {
			// The lexer is parked just after the keyword. The caller reads
			// the data through Lexer and then calls Resync.
			p.cur = nil
			return nil, word, nil
		}
		p.advance()
		return nil, word, nil
	}
	obj, err = p.parseValue(tok)
	return obj, "", err
}

func keywordObject(word string) (Object, bool) {
	switch word {
	case "null":
		return Null{}, true
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	}
	return nil, false
}

func (p *Parser) parseValue(tok *Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		return p.parseInteger()
	case TokenReal:
		v, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q at position %d", tok.Value, tok.Pos)
		}
		p.advance()
		return Real(v), nil
	case TokenString:
		p.advance()
		return String(tok.Value), nil
	case TokenHexString:
		digits := tok.Value
		if len(digits)%2 == 1 {
			digits = append(digits, '0')
		}
		b := make([]byte, len(digits)/2)
		if _, err := hex.Decode(b, digits); err != nil {
			return nil, fmt.Errorf("invalid hex string at position %d: %w", tok.Pos, err)
		}
		p.advance()
		return String(b), nil
	case TokenName:
		p.advance()
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	}
	return nil, fmt.Errorf("unexpected %s at position %d", tok.Type, tok.Pos)
}

// parseInteger parses an integer, or an indirect reference "num gen R".
func (p *Parser) parseInteger() (Object, error) {
	tok := p.cur
	n, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		// "-" or "+" on their own, or numbers too large for int64
		f, ferr := strconv.ParseFloat(string(tok.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", tok.Value, tok.Pos)
		}
		p.advance()
		return Real(f), nil
	}
	if p.peek == nil || p.peek.Type != TokenInteger {
		p.advance()
		return Int(n), nil
	}

	gen, err := strconv.ParseInt(string(p.peek.Value), 10, 64)
	if err != nil {
		p.advance()
		return Int(n), nil
	}
	// Two tokens of lookahead are not enough to see the R, so step onto
	// the generation number and look again.
	p.advance()
	if p.peek != nil && p.peek.Type == TokenIndirectRef {
		p.advance()
		p.advance()
		return IndirectRef{Number: int(n), Generation: int(gen)}, nil
	}
	return Int(n), nil
}

// enter starts a nested array or dictionary.
func (p *Parser) enter(tok *Token) error {
	if p.depth >= MaxNesting {
		return fmt.Errorf("%w: at position %d", ErrNestingTooDeep, tok.Pos)
	}
	p.depth++
	return nil
}

// nested passes errors from inner containers through unchanged, so that
// only the outermost container adds context.
func (p *Parser) nested(format string, args ...any) error {
	err := args[len(args)-1].(error)
	if p.depth > 1 || errors.Is(err, ErrNestingTooDeep) {
		return err
	}
	return fmt.Errorf(format, args...)
}

func (p *Parser) parseArray() (Object, error) {
	if err := p.enter(p.cur); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.advance()
	arr := Array{}
	for {
		tok, err := p.current()
		if err != nil {
			return nil, p.nested("unterminated array: %w", err)
		}
		switch tok.Type {
		case TokenArrayEnd:
			p.advance()
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("unexpected EOF in array")
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, p.nested("error parsing array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	if err := p.enter(p.cur); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.advance()
	dict := make(Dict)
	for {
		tok, err := p.current()
		if err != nil {
			return nil, p.nested("unterminated dictionary: %w", err)
		}
		switch tok.Type {
		case TokenDictEnd:
			p.advance()
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("unexpected EOF in dictionary")
		case TokenName:
		default:
			return nil, fmt.Errorf("expected name for dictionary key, got %s at position %d", tok.Type, tok.Pos)
		}
		key := string(tok.Value)
		p.advance()

		value, err := p.ParseObject()
		if err != nil {
			return nil, p.nested("error parsing value for key /%s: %w", key, err)
		}
		// A null value is equivalent to an absent entry.
		if _, isNull := value.(Null); !isNull {
			dict[key] = value
		}
	}
}

// ParseIndirectObject parses "num gen obj ... endobj", including a stream
// body when one follows the dictionary.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	var nums [2]int
	for i, what := range []string{"object number", "generation number"} {
		tok, err := p.current()
		if err != nil {
			return nil, err
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("expected %s, got %s", what, tok.Type)
		}
		v, err := strconv.Atoi(string(tok.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", what, err)
		}
		nums[i] = v
		p.advance()
	}
	if err := p.expectKeyword("obj"); err != nil {
		return nil, err
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("error parsing indirect object value: %w", err)
	}

	if p.isKeyword("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, errors.New("stream must follow a dictionary")
		}
		if obj, err = p.parseStream(dict); err != nil {
			return nil, fmt.Errorf("error parsing stream: %w", err)
		}
	}

	// Some writers omit endobj; accept end of input in its place.
	if !p.isKeyword("endobj") && (p.cur == nil || p.cur.Type != TokenEOF) {
		return nil, fmt.Errorf("expected 'endobj' keyword, got %v", p.cur)
	}
	p.advance()

	return &IndirectObject{
		Ref:    IndirectRef{Number: nums[0], Generation: nums[1]},
		Object: obj,
	}, nil
}

func (p *Parser) isKeyword(word string) bool {
	tok, err := p.current()
	return err == nil && tok.Type == TokenKeyword && string(tok.Value) == word
}

func (p *Parser) expectKeyword(word string) error {
	if !p.isKeyword(word) {
		return fmt.Errorf("expected '%s' keyword, got %v", word, p.cur)
	}
	p.advance()
	return nil
}

// parseStream reads /Length bytes of stream data after the stream keyword.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	length, err := p.streamLength(dict)
	if err != nil {
		return nil, err
	}
	if err := p.lexer.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("failed to skip EOL after stream keyword: %w", err)
	}
	data, err := p.lexer.ReadBytes(length)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream data: %w", err)
	}

	p.Resync()
	if err := p.expectKeyword("endstream"); err != nil {
		return nil, err
	}
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	lengthObj := dict.Get("Length")
	if ref, ok := lengthObj.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, errors.New("indirect reference for stream length requires a reference resolver")
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stream length reference: %w", err)
		}
		lengthObj = resolved
	}
	length, ok := lengthObj.(Int)
	if !ok {
		return 0, fmt.Errorf("invalid stream length: %v", lengthObj)
	}
	if length < 0 {
		return 0, fmt.Errorf("invalid stream length: %d", length)
	}
	return int(length), nil
}
