// Package model defines the portable block tree that documents are read into
// and written from.
//
// The tree is schema agnostic: it carries no XML and no relationship ids.
// Order is significant everywhere; the position of a block or inline child
// is its reading order. Units on this side are the wire units: font sizes in
// points, image sizes in pixels, spacing, indentation and margins in
// twentieths of a point.
//
// Blocks and inline children are tagged variants. On the wire each value is
// a JSON object with a "type" discriminator:
//
//	{"type": "paragraph", "children": [{"type": "text_run", "text": "Hi"}]}
//	{"type": "table", "rows": [{"cells": [{"content": [...]}]}]}
//	{"type": "image", "path": "/tmp/mcp_media/image1.png", "width": 300, "height": 200}
//	{"type": "page_number"}
package model

// Document is the root of the wire object.
type Document struct {
	Headers  []HeaderFooter `json:"headers"`
	Footers  []HeaderFooter `json:"footers"`
	Sections []Section      `json:"sections"`
}

// HeaderFooter is a named header or footer definition. On read, Name is the
// part name it was parsed from.
type HeaderFooter struct {
	Name    string       `json:"name,omitempty"`
	Content Paragraphs `json:"content"`
}

// Section is a run of blocks sharing page setup and header/footer.
type Section struct {
	Properties *PageProperties `json:"properties,omitempty"`

	// Header and Footer name a definition in Document.Headers/Footers.
	Header string `json:"header,omitempty"`
	Footer string `json:"footer,omitempty"`

	// Headers and Footers are inline definitions; they take precedence over
	// the named references when writing.
	Headers []HeaderFooter `json:"headers,omitempty"`
	Footers []HeaderFooter `json:"footers,omitempty"`

	Children Blocks `json:"children"`
}

// PageProperties is the page setup of a section.
type PageProperties struct {
	Margins     *Margins `json:"margins,omitempty"`
	Orientation string   `json:"orientation,omitempty"` // "portrait" or "landscape"
	Width       *int     `json:"width,omitempty"`
	Height      *int     `json:"height,omitempty"`
}

// Margins are page margins in twentieths of a point.
type Margins struct {
	Top    *int `json:"top,omitempty"`
	Bottom *int `json:"bottom,omitempty"`
	Left   *int `json:"left,omitempty"`
	Right  *int `json:"right,omitempty"`
	Header *int `json:"header,omitempty"`
	Footer *int `json:"footer,omitempty"`
	Gutter *int `json:"gutter,omitempty"`
}

// Spacing is paragraph spacing in twentieths of a point.
type Spacing struct {
	Before   *int   `json:"before,omitempty"`
	After    *int   `json:"after,omitempty"`
	Line     *int   `json:"line,omitempty"`
	LineRule string `json:"lineRule,omitempty"`
}

// Indent is paragraph indentation in twentieths of a point.
type Indent struct {
	Left      *int `json:"left,omitempty"`
	Right     *int `json:"right,omitempty"`
	Hanging   *int `json:"hanging,omitempty"`
	FirstLine *int `json:"firstLine,omitempty"`
}

// Int returns a pointer to v, for filling optional fields.
func Int(v int) *int {
	return &v
}
