// Package wml provides the WordprocessingML vocabulary used by go-docxedit.
//
// DOCX files are ZIP archives of XML parts. This package does not model those
// parts as Go structs; parts are kept as etree documents so that anything the
// editor does not understand survives a load/save cycle untouched. What lives
// here is the shared knowledge about that XML:
//
//   - types.go: namespace URIs, canonical prefixes, relationship and content types
//   - element.go: namespace-aware element and attribute predicates and builders
//   - drawing.go: the inline picture subtree and the PAGE field runs
//   - table.go: table property blocks (full-width layout, single-line borders)
//   - units.go: EMU, half-point and twip conversions
//
// # Namespaces
//
// Elements are matched on their resolved namespace URI when the element is
// attached to a tree that declares it, and on the canonical prefix otherwise
// (freshly built subtrees are detached until inserted). Builders always emit
// the canonical prefixes:
//   - w: (word processing) - Main WordProcessingML namespace
//   - r: (relationships) - Relationships namespace
//   - wp: (drawing placement) - WordprocessingDrawing namespace
//   - a: (drawing) - DrawingML namespace
//   - pic: (picture) - DrawingML picture namespace
package wml
