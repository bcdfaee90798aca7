// Package resolver follows PDF indirect references.
//
// PDF documents use indirect references (e.g., "5 0 R") to refer to objects
// stored elsewhere in the file. Resolve follows a reference, including
// chains of references, to the object it names:
//
//	r := resolver.NewResolver(reader)
//	obj, err := r.Resolve(ref)
//
// ResolveDeep additionally expands every reference nested in dictionaries,
// arrays and stream dictionaries. The font analyzer uses it to load a font
// dictionary with its descriptor, widths and encoding in one call.
//
// Circular references are reported as errors. Reference chains and nesting
// are limited to DefaultMaxDepth levels unless configured otherwise:
//
//	r := resolver.NewResolver(reader, resolver.WithMaxDepth(50))
package resolver
