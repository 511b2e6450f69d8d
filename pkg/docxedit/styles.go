package docxedit

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// paragraphStyle is a built-in paragraph style of created documents.
type paragraphStyle struct {
	id      string
	name    string
	size    int // half-points, 0 keeps the default
	bold    bool
	italic  bool
	outline int // heading level, 0 for body styles
}

var defaultStyles = func() []paragraphStyle {
	styles := []paragraphStyle{
		{id: "Normal", name: "Normal"},
		{id: "Title", name: "Title", size: 56},
		{id: "Subtitle", name: "Subtitle", size: 30, italic: true},
	}
	sizes := []int{32, 26, 24, 22, 22, 22}
	for i, size := range sizes {
		lvl := i + 1
		styles = append(styles, paragraphStyle{
			id:      "Heading" + strconv.Itoa(lvl),
			name:    "heading " + strconv.Itoa(lvl),
			size:    size,
			bold:    true,
			outline: lvl,
		})
	}
	return styles
}()

// newStylesPart builds word/styles.xml for a created document: document
// defaults plus the Normal, Title, Subtitle and Heading1-6 paragraph styles.
func newStylesPart() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", wml.NsW)

	rPr := wml.AddW(wml.AddW(wml.AddW(root, "docDefaults"), "rPrDefault"), "rPr")
	fonts := wml.AddW(rPr, "rFonts")
	wml.SetW(fonts, "ascii", "Calibri")
	wml.SetW(fonts, "hAnsi", "Calibri")
	wml.AddVal(rPr, "sz", "22")

	for _, s := range defaultStyles {
		style := wml.AddW(root, "style")
		wml.SetW(style, "type", "paragraph")
		wml.SetW(style, "styleId", s.id)
		if s.id == "Normal" {
			wml.SetW(style, "default", "1")
		}
		wml.AddVal(style, "name", s.name)
		if s.id != "Normal" {
			wml.AddVal(style, "basedOn", "Normal")
			wml.AddVal(style, "next", "Normal")
			wml.AddW(style, "qFormat")
		}
		if s.outline > 0 {
			pPr := wml.AddW(style, "pPr")
			wml.AddW(pPr, "keepNext")
			sp := wml.AddW(pPr, "spacing")
			wml.SetInt(sp, "before", 240)
			wml.SetInt(sp, "after", 60)
			wml.AddVal(pPr, "outlineLvl", strconv.Itoa(s.outline-1))
		}
		if s.size == 0 && !s.bold && !s.italic {
			continue
		}
		srPr := wml.AddW(style, "rPr")
		if s.bold {
			wml.AddW(srPr, "b")
		}
		if s.italic {
			wml.AddW(srPr, "i")
		}
		if s.size > 0 {
			wml.AddVal(srPr, "sz", strconv.Itoa(s.size))
		}
	}
	return doc
}
