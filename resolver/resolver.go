package resolver

import (
	"fmt"

	"github.com/tsawler/pdftext/core"
)

// DefaultMaxDepth bounds reference chains and nesting during resolution.
const DefaultMaxDepth = 100

// ObjectReader loads indirect objects. The reader package implements it.
type ObjectReader interface {
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// ObjectResolver follows indirect references on behalf of the page tree
// and the font analyzer. It keeps no state between calls, so one resolver
// may serve every page of a document.
type ObjectResolver struct {
	reader   ObjectReader
	maxDepth int
}

// Option configures the resolver
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum reference chain length and nesting depth.
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver creates a resolver reading objects from reader.
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve follows obj while it is an indirect reference, so "1 0 R"
// pointing at "2 0 R" yields the object 2 holds. Containers are returned
// as they are.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	return r.follow(obj, nil)
}

func (r *ObjectResolver) follow(obj core.Object, path map[int]bool) (core.Object, error) {
	var chain map[int]bool
	for depth := 0; ; depth++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		if depth >= r.maxDepth {
			return nil, fmt.Errorf("maximum recursion depth (%d) exceeded", r.maxDepth)
		}
		if path[ref.Number] || chain[ref.Number] {
			return nil, fmt.Errorf("circular reference detected for object %d", ref.Number)
		}
		if chain == nil {
			chain = make(map[int]bool)
		}
		chain[ref.Number] = true

		resolved, err := r.reader.ResolveReference(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference %d %d R: %w", ref.Number, ref.Generation, err)
		}
		obj = resolved
	}
}

// ResolveDeep returns a copy of obj with every indirect reference inside
// dictionaries, arrays and stream dictionaries replaced by its target.
// A reference back to an object on the current path is an error.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.deep(obj, make(map[int]bool), 0)
}

func (r *ObjectResolver) deep(obj core.Object, path map[int]bool, depth int) (core.Object, error) {
	if depth >= r.maxDepth {
		return nil, fmt.Errorf("maximum recursion depth (%d) exceeded", r.maxDepth)
	}

	if ref, ok := obj.(core.IndirectRef); ok {
		if path[ref.Number] {
			return nil, fmt.Errorf("circular reference detected for object %d", ref.Number)
		}
		resolved, err := r.follow(ref, path)
		if err != nil {
			return nil, err
		}
		// Only the head of the chain is tracked; intermediate references
		// were checked by follow.
		path[ref.Number] = true
		defer delete(path, ref.Number)
		return r.deep(resolved, path, depth+1)
	}

	switch v := obj.(type) {
	case core.Dict:
		resolved := make(core.Dict, len(v))
		for key, value := range v {
			rv, err := r.deep(value, path, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dict key %s: %w", key, err)
			}
			resolved[key] = rv
		}
		return resolved, nil

	case core.Array:
		resolved := make(core.Array, len(v))
		for i, elem := range v {
			re, err := r.deep(elem, path, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve array element %d: %w", i, err)
			}
			resolved[i] = re
		}
		return resolved, nil

	case *core.Stream:
		dict, err := r.deep(v.Dict, path, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stream dict: %w", err)
		}
		return &core.Stream{Dict: dict.(core.Dict), Data: v.Data}, nil
	}
	return obj, nil
}

// ResolveDict resolves obj and requires a dictionary.
func (r *ObjectResolver) ResolveDict(obj core.Object) (core.Dict, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	d, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %T", resolved)
	}
	return d, nil
}

// ResolveArray resolves obj and requires an array.
func (r *ObjectResolver) ResolveArray(obj core.Object) (core.Array, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	a, ok := resolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", resolved)
	}
	return a, nil
}
