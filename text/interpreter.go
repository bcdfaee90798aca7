package text

import (
	"fmt"

	"github.com/tsawler/pdftext/contentstream"
	"github.com/tsawler/pdftext/font"
)

// OperationHook is called after each operation has been interpreted, with
// its position in the stream and the fragments it produced.
type OperationHook func(index int, op contentstream.Operation, frags []Fragment)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOperationHook installs a hook that observes every operation.
func WithOperationHook(hook OperationHook) Option {
	return func(in *Interpreter) {
		in.hook = hook
	}
}

// Interpreter walks content stream operations and collects the text they
// show. An Interpreter holds no per-stream state and may be reused.
type Interpreter struct {
	hook OperationHook
}

// NewInterpreter creates an interpreter.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run interprets ops in order with a fresh Context and returns the
// non-empty fragments they produce. The first failing operation stops the
// walk; the fragments gathered before it are returned with the error.
func (in *Interpreter) Run(ops []contentstream.Operation, table font.CharMapTable) ([]Fragment, error) {
	ctx := &Context{}
	var out []Fragment
	for i, op := range ops {
		if !printable(op.Operator) {
			return out, fmt.Errorf("operation %d: %w: operator %q is not printable ASCII", i, ErrStreamCorruption, op.Operator)
		}
		operation, err := NewOperation(op, ctx)
		if err != nil {
			return out, fmt.Errorf("operation %d (%s): %w", i, op.Operator, err)
		}
		frags, err := operation.TextMap(table)
		if err != nil {
			return out, fmt.Errorf("operation %d (%s): %w", i, op.Operator, err)
		}
		for _, f := range frags {
			if f.Text != "" {
				out = append(out, f)
			}
		}
		if in.hook != nil {
			in.hook(i, op, frags)
		}
	}
	return out, nil
}

// RunStream parses decoded content stream data and interprets it. When
// the data cannot be parsed to the end, the operations before the damage
// are still interpreted and the parse failure is reported as
// ErrStreamCorruption.
func (in *Interpreter) RunStream(data []byte, table font.CharMapTable) ([]Fragment, error) {
	ops, parseErr := contentstream.NewParser(data).Parse()
	frags, err := in.Run(ops, table)
	if err != nil {
		return frags, err
	}
	if parseErr != nil {
		return frags, fmt.Errorf("%w: %w", ErrStreamCorruption, parseErr)
	}
	return frags, nil
}

func printable(op string) bool {
	if op == "" {
		return false
	}
	for i := 0; i < len(op); i++ {
		if op[i] < 0x21 || op[i] > 0x7E {
			return false
		}
	}
	return true
}
