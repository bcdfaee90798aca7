// Package pages provides PDF page tree traversal and page access.
//
// # Page Tree
//
// PDF documents organize pages in a tree of /Pages nodes. [PageTree]
// flattens it into document order:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	count, _ := tree.Count()
//	page, _ := tree.GetPage(0)  // 0-indexed
//
// # Inheritance
//
// /Resources may be set on any ancestor of a page. [Page.Chain] returns
// the page dictionary followed by every ancestor reached through /Parent,
// and [Resources] takes the first dictionary found along it.
//
// # Contents
//
// [Page.Contents] returns each content stream separately so callers can
// process them one at a time.
package pages
