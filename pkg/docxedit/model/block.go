package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block is a body-level element: *Paragraph or *Table.
type Block interface {
	isBlock()
}

// Inline is a paragraph child: *TextRun, *Image or *PageNumber.
type Inline interface {
	isInline()
}

// Variant discriminators.
const (
	TypeParagraph  = "paragraph"
	TypeTable      = "table"
	TypeTextRun    = "text_run"
	TypeImage      = "image"
	TypePageNumber = "page_number"
)

// Paragraph is a block of inline children.
type Paragraph struct {
	Alignment string   `json:"alignment,omitempty"`
	StyleName string   `json:"style,omitempty"`
	Spacing   *Spacing `json:"spacing,omitempty"`
	Indent    *Indent  `json:"indent,omitempty"`
	Children  Inlines  `json:"children"`

	// Text and Heading are write-side conveniences: Text becomes a leading
	// plain run, Heading is used as the style when StyleName is empty.
	Text    string `json:"text,omitempty"`
	Heading string `json:"heading,omitempty"`
}

func (*Paragraph) isBlock() {}

// PlainText concatenates the text of the paragraph's runs.
func (p *Paragraph) PlainText() string {
	var b strings.Builder
	b.WriteString(p.Text)
	for _, c := range p.Children {
		if r, ok := c.(*TextRun); ok {
			b.WriteString(r.Text)
		}
	}
	return b.String()
}

// Table is a grid of rows.
type Table struct {
	Rows []Row `json:"rows"`
}

func (*Table) isBlock() {}

// Row is an ordered list of cells.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Cell holds nested blocks.
type Cell struct {
	Content Blocks `json:"content"`
}

// PlainText concatenates the text of the cell's paragraphs, one per line.
func (c Cell) PlainText() string {
	var lines []string
	for _, b := range c.Content {
		if p, ok := b.(*Paragraph); ok {
			lines = append(lines, p.PlainText())
		}
	}
	return strings.Join(lines, "\n")
}

// TextRun is a span of uniformly formatted text. Size is in points.
type TextRun struct {
	Text      string  `json:"text"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Font      string  `json:"font,omitempty"`
}

func (*TextRun) isInline() {}

// Image references a media file on the local filesystem. Sizes are pixels.
type Image struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (*Image) isInline() {}

// PageNumber is the current page number field.
type PageNumber struct{}

func (*PageNumber) isInline() {}

// Blocks is an ordered list of blocks with tagged JSON encoding.
type Blocks []Block

// Inlines is an ordered list of inline children with tagged JSON encoding.
type Inlines []Inline

type tagged struct {
	Type string `json:"type"`
}

// MarshalJSON encodes each block with its type discriminator.
func (bs Blocks) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(bs))
	for _, b := range bs {
		var (
			raw []byte
			err error
		)
		switch v := b.(type) {
		case *Paragraph:
			raw, err = marshalParagraph(v)
		case *Table:
			type plain Table
			raw, err = json.Marshal(struct {
				tagged
				*plain
			}{tagged{TypeTable}, (*plain)(v)})
		default:
			return nil, fmt.Errorf("unknown block type %T", b)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes blocks by their type discriminator. A missing type
// is read as a paragraph.
func (bs *Blocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Blocks, 0, len(raws))
	for i, raw := range raws {
		var t tagged
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		switch t.Type {
		case TypeParagraph, "":
			p := &Paragraph{}
			if err := json.Unmarshal(raw, p); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			out = append(out, p)
		case TypeTable:
			tbl := &Table{}
			if err := json.Unmarshal(raw, tbl); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			out = append(out, tbl)
		default:
			return fmt.Errorf("block %d: unknown type %q", i, t.Type)
		}
	}
	*bs = out
	return nil
}

func marshalParagraph(p *Paragraph) ([]byte, error) {
	type plain Paragraph
	return json.Marshal(struct {
		tagged
		*plain
	}{tagged{TypeParagraph}, (*plain)(p)})
}

// Paragraphs is an ordered list of paragraphs, as held by headers and
// footers. Each entry is encoded with the paragraph discriminator; entries
// without one are accepted on decode.
type Paragraphs []*Paragraph

// MarshalJSON encodes each paragraph with its type discriminator.
func (ps Paragraphs) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ps))
	for i, p := range ps {
		if p == nil {
			return nil, fmt.Errorf("paragraph %d: nil", i)
		}
		raw, err := marshalParagraph(p)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes paragraphs, rejecting any other block type.
func (ps *Paragraphs) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Paragraphs, 0, len(raws))
	for i, raw := range raws {
		var t tagged
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("paragraph %d: %w", i, err)
		}
		if t.Type != TypeParagraph && t.Type != "" {
			return fmt.Errorf("paragraph %d: unexpected type %q", i, t.Type)
		}
		p := &Paragraph{}
		if err := json.Unmarshal(raw, p); err != nil {
			return fmt.Errorf("paragraph %d: %w", i, err)
		}
		out = append(out, p)
	}
	*ps = out
	return nil
}

// MarshalJSON encodes each inline child with its type discriminator.
func (is Inlines) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(is))
	for _, c := range is {
		var (
			raw []byte
			err error
		)
		switch v := c.(type) {
		case *TextRun:
			raw, err = json.Marshal(struct {
				tagged
				*TextRun
			}{tagged{TypeTextRun}, v})
		case *Image:
			raw, err = json.Marshal(struct {
				tagged
				*Image
			}{tagged{TypeImage}, v})
		case *PageNumber:
			raw, err = json.Marshal(tagged{TypePageNumber})
		default:
			return nil, fmt.Errorf("unknown inline type %T", c)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes inline children by their type discriminator. A
// missing type is read as a text run.
func (is *Inlines) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Inlines, 0, len(raws))
	for i, raw := range raws {
		var t tagged
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
		switch t.Type {
		case TypeTextRun, "":
			r := &TextRun{}
			if err := json.Unmarshal(raw, r); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
			out = append(out, r)
		case TypeImage:
			img := &Image{}
			if err := json.Unmarshal(raw, img); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
			out = append(out, img)
		case TypePageNumber:
			out = append(out, &PageNumber{})
		default:
			return fmt.Errorf("child %d: unknown type %q", i, t.Type)
		}
	}
	*is = out
	return nil
}
