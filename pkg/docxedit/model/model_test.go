package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_DecodeWireFormat(t *testing.T) {
	input := `{
		"headers": [{"name": "h", "content": [{"children": [{"text": "Header"}]}]}],
		"footers": [{"name": "f", "content": [{"children": [{"type": "text_run", "text": "Page "}, {"type": "page_number"}]}]}],
		"sections": [{
			"properties": {"orientation": "landscape", "margins": {"top": 720, "left": 1080}},
			"footer": "f",
			"children": [
				{"type": "paragraph", "style": "Heading1", "alignment": "center", "children": [
					{"type": "text_run", "text": "Title", "bold": true, "size": 14, "color": "FF0000", "font": "Arial"}
				]},
				{"text": "shorthand", "heading": "Heading2"},
				{"type": "table", "rows": [{"cells": [{"content": [{"type": "paragraph", "children": [{"text": "cell"}]}]}]}]},
				{"type": "paragraph", "spacing": {"before": 120, "lineRule": "auto"}, "indent": {"firstLine": 360}, "children": [
					{"type": "image", "path": "/tmp/a.png", "width": 30, "height": 20}
				]}
			]
		}]
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	require.Len(t, doc.Headers, 1)
	assert.Equal(t, "Header", doc.Headers[0].Content[0].PlainText())
	require.Len(t, doc.Footers[0].Content[0].Children, 2)
	assert.IsType(t, &PageNumber{}, doc.Footers[0].Content[0].Children[1])

	require.Len(t, doc.Sections, 1)
	sec := doc.Sections[0]
	assert.Equal(t, "f", sec.Footer)
	assert.Equal(t, "landscape", sec.Properties.Orientation)
	assert.Equal(t, 720, *sec.Properties.Margins.Top)
	assert.Nil(t, sec.Properties.Margins.Bottom)
	require.Len(t, sec.Children, 4)

	p := sec.Children[0].(*Paragraph)
	assert.Equal(t, "Heading1", p.StyleName)
	assert.Equal(t, "center", p.Alignment)
	assert.Equal(t, &TextRun{Text: "Title", Bold: true, Size: 14, Color: "FF0000", Font: "Arial"}, p.Children[0])

	short := sec.Children[1].(*Paragraph)
	assert.Equal(t, "shorthand", short.Text)
	assert.Equal(t, "Heading2", short.Heading)

	tbl := sec.Children[2].(*Table)
	assert.Equal(t, "cell", tbl.Rows[0].Cells[0].PlainText())

	last := sec.Children[3].(*Paragraph)
	assert.Equal(t, 120, *last.Spacing.Before)
	assert.Equal(t, "auto", last.Spacing.LineRule)
	assert.Equal(t, 360, *last.Indent.FirstLine)
	assert.Equal(t, &Image{Path: "/tmp/a.png", Width: 30, Height: 20}, last.Children[0])
}

func TestBlocks_EncodeTagsVariants(t *testing.T) {
	blocks := Blocks{
		&Paragraph{StyleName: "Normal", Children: Inlines{
			&TextRun{Text: "a", Italic: true},
			&Image{Path: "x.png", Width: 1, Height: 2},
			&PageNumber{},
		}},
		&Table{Rows: []Row{{Cells: []Cell{{Content: Blocks{}}}}}},
	}
	data, err := json.Marshal(blocks)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "paragraph", raw[0]["type"])
	assert.Equal(t, "Normal", raw[0]["style"])
	assert.Equal(t, "table", raw[1]["type"])

	children := raw[0]["children"].([]any)
	assert.Equal(t, "text_run", children[0].(map[string]any)["type"])
	assert.Equal(t, true, children[0].(map[string]any)["italic"])
	assert.NotContains(t, children[0].(map[string]any), "bold", "false flags are omitted")
	assert.Equal(t, "image", children[1].(map[string]any)["type"])
	assert.Equal(t, map[string]any{"type": "page_number"}, children[2])

	var back Blocks
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, blocks, back)
}

func TestBlocks_UnknownType(t *testing.T) {
	var bs Blocks
	err := json.Unmarshal([]byte(`[{"type": "chart"}]`), &bs)
	assert.ErrorContains(t, err, `unknown type "chart"`)

	var is Inlines
	err = json.Unmarshal([]byte(`[{"type": "footnote"}]`), &is)
	assert.ErrorContains(t, err, `unknown type "footnote"`)
}

func TestBlocks_NilEntryFailsToEncode(t *testing.T) {
	_, err := json.Marshal(Blocks{nil})
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	p := &Paragraph{Text: "lead ", Children: Inlines{
		&TextRun{Text: "one"}, &PageNumber{}, &TextRun{Text: " two"},
	}}
	assert.Equal(t, "lead one two", p.PlainText())

	c := Cell{Content: Blocks{
		&Paragraph{Children: Inlines{&TextRun{Text: "x"}}},
		&Table{},
		&Paragraph{Children: Inlines{&TextRun{Text: "y"}}},
	}}
	assert.Equal(t, "x\ny", c.PlainText())
}

func TestHeaderFooter_ContentIsTagged(t *testing.T) {
	doc := Document{
		Headers: []HeaderFooter{{Name: "word/header1.xml", Content: Paragraphs{
			{Children: Inlines{&TextRun{Text: "Head"}}},
		}}},
		Footers:  []HeaderFooter{},
		Sections: []Section{},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw struct {
		Headers []struct {
			Content []map[string]any `json:"content"`
		} `json:"headers"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Headers[0].Content, 1)
	assert.Equal(t, "paragraph", raw.Headers[0].Content[0]["type"])

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc.Headers, back.Headers)
}

func TestParagraphs_Decode(t *testing.T) {
	var ps Paragraphs
	require.NoError(t, json.Unmarshal([]byte(`[{"type": "paragraph", "text": "a"}, {"text": "b"}]`), &ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "a", ps[0].Text)
	assert.Equal(t, "b", ps[1].Text)

	err := json.Unmarshal([]byte(`[{"type": "table", "rows": []}]`), &ps)
	assert.ErrorContains(t, err, `unexpected type "table"`)

	_, err = json.Marshal(Paragraphs{nil})
	assert.Error(t, err)
}
