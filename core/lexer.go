package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// TokenType is the lexical class of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // true, obj, stream, and content stream operators such as Tj or T*
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>
	TokenName        // /Type
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R
)

var tokenTypeNames = [...]string{
	TokenEOF:         "EOF",
	TokenComment:     "comment",
	TokenKeyword:     "keyword",
	TokenInteger:     "integer",
	TokenReal:        "real",
	TokenString:      "string",
	TokenHexString:   "hex string",
	TokenName:        "name",
	TokenArrayStart:  "[",
	TokenArrayEnd:    "]",
	TokenDictStart:   "<<",
	TokenDictEnd:     ">>",
	TokenIndirectRef: "R",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenTypeNames) {
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
	return tokenTypeNames[t]
}

// Token is one lexical unit. Value holds the decoded payload: string and
// name escapes are already resolved, hex strings keep their hex digits.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %q at %d", t.Type, t.Value, t.Pos)
}

// Lexer splits PDF syntax into tokens.
type Lexer struct {
	r   *bufio.Reader
	pos int64
}

// NewLexer creates a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Pos returns the offset of the next unread byte.
func (l *Lexer) Pos() int64 {
	return l.pos
}

// NextToken returns the next token. At end of input it returns a TokenEOF
// token and a nil error.
func (l *Lexer) NextToken() (*Token, error) {
	if err := l.skipWhitespace(); err != nil && err != io.EOF {
		return nil, err
	}
	start := l.pos
	b, err := l.peek()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: start}, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case b == '%':
		return l.readComment()
	case b == '[':
		l.ReadByte()
		return &Token{Type: TokenArrayStart, Value: []byte{b}, Pos: start}, nil
	case b == ']':
		l.ReadByte()
		return &Token{Type: TokenArrayEnd, Value: []byte{b}, Pos: start}, nil
	case b == '(':
		return l.readString()
	case b == '<':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '<' {
			l.skip(2)
			return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: start}, nil
		}
		return l.readHexString()
	case b == '>':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '>' {
			l.skip(2)
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: start}, nil
		}
		return nil, fmt.Errorf("unexpected '>' at position %d", start)
	case b == '/':
		return l.readName()
	case isDigit(b) || b == '-' || b == '+' || b == '.':
		return l.readNumber()
	case isDelimiter(b):
		return nil, fmt.Errorf("unexpected delimiter %q at position %d", b, start)
	}
	return l.readKeyword()
}

// ReadByte consumes one byte.
func (l *Lexer) ReadByte() (byte, error) {
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	return b, nil
}

// Peek returns the next byte without consuming it.
func (l *Lexer) Peek() (byte, error) {
	return l.peek()
}

// ReadBytes reads exactly n bytes of raw data.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	got, err := io.ReadFull(l.r, data)
	l.pos += int64(got)
	if err != nil {
		return data[:got], fmt.Errorf("unexpected EOF: expected %d bytes, got %d", n, got)
	}
	return data, nil
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword: CRLF, a lone LF, or (leniently) a lone CR.
func (l *Lexer) SkipStreamEOL() error {
	b, err := l.peek()
	if err != nil {
		return err
	}
	switch b {
	case '\n':
		l.ReadByte()
	case '\r':
		l.ReadByte()
		if next, err := l.peek(); err == nil && next == '\n' {
			l.ReadByte()
		}
	}
	return nil
}

func (l *Lexer) peek() (byte, error) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *Lexer) skip(n int) {
	got, _ := l.r.Discard(n)
	l.pos += int64(got)
}

func (l *Lexer) skipWhitespace() error {
	for {
		b, err := l.peek()
		if err != nil {
			return err
		}
		if !isWhitespace(b) {
			return nil
		}
		l.ReadByte()
	}
}

func (l *Lexer) readComment() (*Token, error) {
	start := l.pos
	l.ReadByte()
	var buf bytes.Buffer
	buf.WriteByte('%')
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if b == '\r' || b == '\n' {
			break
		}
		l.ReadByte()
		buf.WriteByte(b)
	}
	return &Token{Type: TokenComment, Value: buf.Bytes(), Pos: start}, nil
}

// readString reads a literal string, resolving escapes and balanced parentheses.
func (l *Lexer) readString() (*Token, error) {
	start := l.pos
	l.ReadByte()

	var buf bytes.Buffer
	depth := 1
	for {
		b, err := l.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated string starting at %d", start)
		}
		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
		case '\r':
			// an unescaped end of line in a string reads as a single LF
			if next, err := l.peek(); err == nil && next == '\n' {
				l.ReadByte()
			}
			b = '\n'
		case '\\':
			if err := l.readEscape(&buf); err != nil {
				return nil, err
			}
			continue
		}
		buf.WriteByte(b)
	}
}

func (l *Lexer) readEscape(buf *bytes.Buffer) error {
	c, err := l.ReadByte()
	if err != nil {
		return err
	}
	switch c {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if next, err := l.peek(); err == nil && next == '\n' {
			l.ReadByte()
		}
	case '\n':
	case '0', '1', '2', '3', '4', '5', '6', '7':
		val := c - '0'
		for i := 0; i < 2; i++ {
			next, err := l.peek()
			if err != nil || next < '0' || next > '7' {
				break
			}
			l.ReadByte()
			val = val*8 + (next - '0')
		}
		buf.WriteByte(val)
	default:
		buf.WriteByte(c)
	}
	return nil
}

func (l *Lexer) readHexString() (*Token, error) {
	start := l.pos
	l.ReadByte()

	var buf bytes.Buffer
	for {
		b, err := l.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string starting at %d", start)
		}
		switch {
		case b == '>':
			return &Token{Type: TokenHexString, Value: buf.Bytes(), Pos: start}, nil
		case isWhitespace(b):
		case isHexDigit(b):
			buf.WriteByte(b)
		default:
			return nil, fmt.Errorf("invalid hex digit %q at position %d", b, l.pos-1)
		}
	}
}

func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	l.ReadByte()

	var buf bytes.Buffer
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.ReadByte()
		if b == '#' {
			if hex, err := l.r.Peek(2); err == nil && isHexDigit(hex[0]) && isHexDigit(hex[1]) {
				l.skip(2)
				b = hexValue(hex[0])<<4 | hexValue(hex[1])
			}
		}
		buf.WriteByte(b)
	}
	return &Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

func (l *Lexer) readNumber() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer
	typ := TokenInteger
	for {
		b, err := l.peek()
		if err != nil {
			break
		}
		if b == '.' && typ == TokenInteger {
			typ = TokenReal
		} else if !isDigit(b) && !((b == '-' || b == '+') && buf.Len() == 0) {
			break
		}
		l.ReadByte()
		buf.WriteByte(b)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("malformed number at position %d", start)
	}
	return &Token{Type: typ, Value: buf.Bytes(), Pos: start}, nil
}

// readKeyword reads a run of regular characters.
func (l *Lexer) readKeyword() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer
	for {
		b, err := l.peek()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.ReadByte()
		buf.WriteByte(b)
	}
	if buf.Len() == 1 && buf.Bytes()[0] == 'R' {
		return &Token{Type: TokenIndirectRef, Value: buf.Bytes(), Pos: start}, nil
	}
	return &Token{Type: TokenKeyword, Value: buf.Bytes(), Pos: start}, nil
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

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case isDigit(b):
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
