package docxedit

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// contentTypes returns [Content_Types].xml for reading, creating an empty one
// when the package has none.
func (p *Package) contentTypes() (*etree.Document, error) {
	if !p.Has(wml.PartContentTypes) {
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		doc.CreateElement("Types").CreateAttr("xmlns", wml.NsCT)
		p.SetPart(wml.PartContentTypes, doc)
		return doc, nil
	}
	return p.ReadPart(wml.PartContentTypes)
}

// ensureDefaultContentType registers a Default content type for an extension
// that has none. The part is only touched when an entry is added.
func (p *Package) ensureDefaultContentType(ext, contentType string) error {
	doc, err := p.contentTypes()
	if err != nil {
		return err
	}
	for _, el := range doc.Root().SelectElements("Default") {
		if strings.EqualFold(el.SelectAttrValue("Extension", ""), ext) {
			return nil
		}
	}

	if doc, err = p.Part(wml.PartContentTypes); err != nil {
		return err
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
	// Defaults precede Overrides
	doc.Root().InsertChildAt(0, def)
	return nil
}

// setOverride registers or replaces the Override content type of a part.
func (p *Package) setOverride(partName, contentType string) error {
	if _, err := p.contentTypes(); err != nil {
		return err
	}
	doc, err := p.Part(wml.PartContentTypes)
	if err != nil {
		return err
	}
	name := "/" + partName
	for _, el := range doc.Root().SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == name {
			el.CreateAttr("ContentType", contentType)
			return nil
		}
	}
	ov := doc.Root().CreateElement("Override")
	ov.CreateAttr("PartName", name)
	ov.CreateAttr("ContentType", contentType)
	return nil
}
