package pages

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdftext/core"
)

// maxTreeDepth bounds /Parent chains and /Kids nesting.
const maxTreeDepth = 64

// ErrMissingResourceChain is returned when the /Parent chain of a page
// cannot be followed, or when neither the page nor any ancestor carries a
// /Resources dictionary.
var ErrMissingResourceChain = errors.New("missing resource chain")

// ObjectResolver resolves indirect references for the page tree
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveDeep(obj core.Object) (core.Object, error)
}

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{
		dict:     dict,
		resolver: resolver,
	}
}

// Type returns the catalog type (should be "Catalog")
func (c *Catalog) Type() string {
	name, _ := c.dict.GetName("Type")
	return string(name)
}

// Pages returns the page tree root
func (c *Catalog) Pages() (core.Dict, error) {
	pagesRef := c.dict.Get("Pages")
	if pagesRef == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	pagesObj, err := c.resolver.Resolve(pagesRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	pagesDict, ok := pagesObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %T", pagesObj)
	}
	return pagesDict, nil
}

// PageTree flattens the page tree into document order.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{
		root:     root,
		resolver: resolver,
	}
}

// Count returns the number of page leaves found in the tree. The /Count
// entry is not trusted since damaged files often get it wrong.
func (t *PageTree) Count() (int, error) {
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns all pages in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		pages := make([]*Page, 0)
		seen := make(map[int]bool)
		if err := t.traverse(t.root, seen, 0, &pages); err != nil {
			return nil, fmt.Errorf("failed to traverse page tree: %w", err)
		}
		t.pages = pages
	}
	return t.pages, nil
}

func (t *PageTree) traverse(node core.Dict, seen map[int]bool, depth int, out *[]*Page) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	typ, _ := node.GetName("Type")
	if typ == "" {
		// Some writers omit /Type; a node with /Kids is an intermediate node.
		if node.Has("Kids") {
			typ = "Pages"
		} else {
			typ = "Page"
		}
	}

	switch typ {
	case "Pages":
		kidsObj, err := t.resolver.Resolve(node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}
		kids, ok := kidsObj.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", kidsObj)
		}
		for i, kid := range kids {
			if ref, ok := kid.(core.IndirectRef); ok {
				if seen[ref.Number] {
					return fmt.Errorf("page tree node %d visited twice", ref.Number)
				}
				seen[ref.Number] = true
			}
			resolved, err := t.resolver.Resolve(kid)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}
			kidDict, ok := resolved.(core.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %T", resolved)
			}
			if err := t.traverse(kidDict, seen, depth+1, out); err != nil {
				return err
			}
		}
	case "Page":
		*out = append(*out, NewPage(node, t.resolver))
	default:
		return fmt.Errorf("unexpected page node type: %s", typ)
	}
	return nil
}

// Page represents a single PDF page
type Page struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewPage creates a page from its dictionary. Inherited attributes are
// found by following /Parent through resolver.
func NewPage(dict core.Dict, resolver ObjectResolver) *Page {
	return &Page{
		dict:     dict,
		resolver: resolver,
	}
}

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// Resolve resolves obj through the document the page belongs to.
func (p *Page) Resolve(obj core.Object) (core.Object, error) {
	return p.resolver.Resolve(obj)
}

// ResolveDeep expands every reference inside obj.
func (p *Page) ResolveDeep(obj core.Object) (core.Object, error) {
	return p.resolver.ResolveDeep(obj)
}

// Chain returns the page dictionary followed by its ancestors up to the
// root of the page tree.
func (p *Page) Chain() ([]core.Dict, error) {
	chain := []core.Dict{p.dict}
	seen := make(map[int]bool)
	node := p.dict
	for {
		parentObj := node.Get("Parent")
		if parentObj == nil {
			return chain, nil
		}
		if ref, ok := parentObj.(core.IndirectRef); ok {
			if seen[ref.Number] {
				return nil, fmt.Errorf("cycle in /Parent chain at object %d", ref.Number)
			}
			seen[ref.Number] = true
		}
		if len(chain) > maxTreeDepth {
			return nil, fmt.Errorf("/Parent chain longer than %d", maxTreeDepth)
		}
		resolved, err := p.resolver.Resolve(parentObj)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve /Parent: %w", err)
		}
		parent, ok := resolved.(core.Dict)
		if !ok {
			return nil, fmt.Errorf("invalid /Parent type: %T", resolved)
		}
		chain = append(chain, parent)
		node = parent
	}
}

// Node is a page seen through its ancestor chain.
type Node interface {
	// Chain returns the page dictionary followed by its /Parent ancestors.
	Chain() ([]core.Dict, error)
	Resolve(obj core.Object) (core.Object, error)
}

// Resources returns the /Resources dictionary that applies to n: the
// first one found on the page or, failing that, on the nearest ancestor
// that has one. An entry that does not resolve to a dictionary is passed
// over.
func Resources(n Node) (core.Dict, error) {
	chain, err := n.Chain()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingResourceChain, err)
	}
	for _, node := range chain {
		obj := node.Get("Resources")
		if obj == nil {
			continue
		}
		res, err := n.Resolve(obj)
		if err != nil {
			return nil, fmt.Errorf("resolve /Resources: %w", err)
		}
		if d, ok := res.(core.Dict); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: no /Resources on the page or its %d ancestors", ErrMissingResourceChain, max(len(chain)-1, 0))
}

// Contents returns the page content streams in order. Null or missing
// entries in a /Contents array are skipped.
func (p *Page) Contents() ([]*core.Stream, error) {
	contentsObj := p.dict.Get("Contents")
	if contentsObj == nil {
		return nil, nil
	}
	resolved, err := p.resolver.Resolve(contentsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	switch v := resolved.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			obj, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			switch s := obj.(type) {
			case *core.Stream:
				streams = append(streams, s)
			case core.Null, nil:
			default:
				return nil, fmt.Errorf("contents[%d] is %T, not a stream", i, obj)
			}
		}
		return streams, nil
	case core.Null:
		return nil, nil
	}
	return nil, fmt.Errorf("invalid Contents type: %T", resolved)
}
