package text

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdftext/contentstream"
	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/font"
)

var (
	// ErrStreamCorruption is returned for operations whose operands do not
	// fit the operator, and for content that cannot be parsed at all.
	ErrStreamCorruption = errors.New("content stream corruption")

	// ErrUndefinedFont is returned when text is shown with no font selected
	// or with a font the page does not define.
	ErrUndefinedFont = errors.New("undefined font")
)

// Context is the text state shared by the operations of one content
// stream. Only the current font resource name is tracked.
type Context struct {
	Font string
}

// Fragment is one piece of text produced by an operation. Source is the
// operand the text came from: a string for shown text, the adjustment
// number for a TJ word break, nil for line and word breaks from Td.
type Fragment struct {
	Source core.Object
	Text   string
}

// Operation is a content stream operation bound to its text context.
type Operation interface {
	// TextMap returns the fragments the operation contributes, decoded
	// with the page's character maps.
	TextMap(table font.CharMapTable) ([]Fragment, error)
}

type constructor func(operands []core.Object, ctx *Context) (Operation, error)

var registry = map[string]constructor{
	"Tf": newSetFont,
	"Td": newMoveText,
	"Tj": newShowText,
	"TJ": newShowTextArray,
}

// NewOperation binds op to ctx. Operators without a text meaning become
// a no-op. Constructing a Tf changes ctx; Tj and TJ keep a copy of the
// font selected at the time they are constructed.
func NewOperation(op contentstream.Operation, ctx *Context) (Operation, error) {
	newOp, ok := registry[op.Operator]
	if !ok {
		return passthrough{}, nil
	}
	return newOp(op.Operands, ctx)
}

type passthrough struct{}

func (passthrough) TextMap(font.CharMapTable) ([]Fragment, error) { return nil, nil }

// setFont is Tf. It only affects the context.
type setFont struct{}

func newSetFont(operands []core.Object, ctx *Context) (Operation, error) {
	if len(operands) == 0 {
		return nil, fmt.Errorf("%w: Tf without operands", ErrStreamCorruption)
	}
	name, ok := operands[0].(core.Name)
	if !ok {
		return nil, fmt.Errorf("%w: Tf font operand is %s, want name", ErrStreamCorruption, typeName(operands[0]))
	}
	ctx.Font = string(name)
	return setFont{}, nil
}

func (setFont) TextMap(font.CharMapTable) ([]Fragment, error) { return nil, nil }

// moveText is Td. A vertical move reads as a line break, a horizontal
// move as a word break.
type moveText struct {
	tx, ty float64
}

func newMoveText(operands []core.Object, _ *Context) (Operation, error) {
	if len(operands) != 2 {
		return nil, fmt.Errorf("%w: Td takes 2 operands, got %d", ErrStreamCorruption, len(operands))
	}
	tx, ok1 := core.Number(operands[0])
	ty, ok2 := core.Number(operands[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: Td operands must be numbers", ErrStreamCorruption)
	}
	return moveText{tx: tx, ty: ty}, nil
}

func (m moveText) TextMap(font.CharMapTable) ([]Fragment, error) {
	var frags []Fragment
	if m.ty != 0 {
		frags = append(frags, Fragment{Text: "\n"})
	}
	if m.tx != 0 {
		frags = append(frags, Fragment{Text: " "})
	}
	return frags, nil
}

// showText is Tj.
type showText struct {
	font string
	s    core.String
}

func newShowText(operands []core.Object, ctx *Context) (Operation, error) {
	if len(operands) != 1 {
		return nil, fmt.Errorf("%w: Tj takes 1 operand, got %d", ErrStreamCorruption, len(operands))
	}
	s, ok := operands[0].(core.String)
	if !ok {
		return nil, fmt.Errorf("%w: Tj operand is %s, want string", ErrStreamCorruption, typeName(operands[0]))
	}
	return showText{font: ctx.Font, s: s}, nil
}

func (op showText) TextMap(table font.CharMapTable) ([]Fragment, error) {
	cm, err := lookupFont(table, op.font)
	if err != nil {
		return nil, err
	}
	text, err := font.Decode(op.s, cm)
	if err != nil {
		return nil, err
	}
	return []Fragment{{Source: op.s, Text: text}}, nil
}

// showTextArray is TJ. Adjustments further left than half a space read
// as word breaks; smaller ones are kerning and dropped.
type showTextArray struct {
	font  string
	items core.Array
}

func newShowTextArray(operands []core.Object, ctx *Context) (Operation, error) {
	if len(operands) != 1 {
		return nil, fmt.Errorf("%w: TJ takes 1 operand, got %d", ErrStreamCorruption, len(operands))
	}
	items, ok := operands[0].(core.Array)
	if !ok {
		return nil, fmt.Errorf("%w: TJ operand is %s, want array", ErrStreamCorruption, typeName(operands[0]))
	}
	for i, item := range items {
		switch item.(type) {
		case core.String, core.Int, core.Real:
		default:
			return nil, fmt.Errorf("%w: TJ element %d is %s", ErrStreamCorruption, i, typeName(item))
		}
	}
	return showTextArray{font: ctx.Font, items: items}, nil
}

func (op showTextArray) TextMap(table font.CharMapTable) ([]Fragment, error) {
	if len(op.items) == 0 {
		return nil, nil
	}
	cm, err := lookupFont(table, op.font)
	if err != nil {
		return nil, err
	}
	var frags []Fragment
	for _, item := range op.items {
		if s, ok := item.(core.String); ok {
			text, err := font.Decode(s, cm)
			if err != nil {
				return nil, err
			}
			frags = append(frags, Fragment{Source: s, Text: text})
			continue
		}
		if adj, _ := core.Number(item); adj < -cm.HalfSpace {
			frags = append(frags, Fragment{Source: item, Text: " "})
		}
	}
	return frags, nil
}

func lookupFont(table font.CharMapTable, id string) (*font.CharMap, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: text shown before Tf", ErrUndefinedFont)
	}
	cm, ok := table[id]
	if !ok || cm == nil {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedFont, id)
	}
	return cm, nil
}

func typeName(obj core.Object) string {
	if obj == nil {
		return "null"
	}
	return obj.Type().String()
}
