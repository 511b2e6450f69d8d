package docxedit

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// Editor applies point mutations directly to the cached part trees of a
// package, without a round trip through the block tree. Mutations stay in
// memory until Save.
type Editor struct {
	pkg    *Package
	config *Config
	log    *log.Logger
}

// NewEditor creates an editor over pkg.
func NewEditor(pkg *Package) *Editor {
	return &Editor{
		pkg:    pkg,
		config: GetGlobalConfig(),
		log:    WithField("component", "editor"),
	}
}

// Package returns the package being edited.
func (e *Editor) Package() *Package {
	return e.pkg
}

// Save writes the edited package to path.
func (e *Editor) Save(path string) error {
	return e.pkg.Save(path)
}

// Paragraphs returns the paragraphs of a document part's body in document
// order, including paragraphs inside tables and text boxes. A text box
// paragraph comes right after the paragraph anchoring it. Positional indexes
// used by the editor refer to this order.
func (e *Editor) Paragraphs(partName string) ([]*etree.Element, error) {
	doc, err := e.pkg.ReadPart(partName)
	if err != nil {
		return nil, err
	}
	body := wml.ChildW(doc.Root(), "body")
	if body == nil {
		return nil, formatErr("list paragraphs", partName, errors.New("missing w:body"))
	}
	return wml.AllDescendants(body, wml.NsW, "p"), nil
}

// paragraphAt fetches the main document for mutation and returns the
// paragraph at index. Nothing is marked touched when the index is invalid.
func (e *Editor) paragraphAt(index int) (string, *etree.Element, error) {
	main := e.pkg.MainDocumentPart()
	paras, err := e.Paragraphs(main)
	if err != nil {
		return "", nil, err
	}
	if index < 0 || index >= len(paras) {
		return "", nil, &IndexError{What: "paragraph", Index: index, Count: len(paras)}
	}
	if _, err := e.pkg.Part(main); err != nil {
		return "", nil, err
	}
	return main, paras[index], nil
}

// ImageOptions describes an image to inject.
type ImageOptions struct {
	// ParagraphIndex is the zero-based index of the target paragraph.
	ParagraphIndex int
	// Data is the encoded image.
	Data []byte
	// Name is the source file name; only its extension is used.
	Name string
	// Width and Height are in pixels. A zero side is derived from the other
	// and the image's aspect ratio; when the image cannot be decoded the
	// configured inject size fills it.
	Width  int
	Height int
}

// InjectImage stores the image as new media, registers a relationship to it
// and appends an inline picture run to the target paragraph. It returns the
// minted relationship id.
func (e *Editor) InjectImage(opts ImageOptions) (string, error) {
	if len(opts.Data) == 0 {
		return "", formatErr("inject image", opts.Name, errors.New("empty image data"))
	}
	main, para, err := e.paragraphAt(opts.ParagraphIndex)
	if err != nil {
		return "", err
	}

	width, height := resolveImageSize(opts.Data, opts.Width, opts.Height, e.config.InjectWidth, e.config.InjectHeight)

	name := injectedMediaName(imageExtension(opts.Name, opts.Data))
	target, err := e.pkg.AddMedia(opts.Data, name)
	if err != nil {
		return "", err
	}
	rels, err := e.pkg.Relationships(main)
	if err != nil {
		return "", err
	}
	relID, err := rels.Add(wml.RelImage, target)
	if err != nil {
		return "", err
	}

	doc, err := e.pkg.Part(main)
	if err != nil {
		return "", err
	}
	root := doc.Root()
	for _, ns := range []string{wml.NsW, wml.NsR, wml.NsWP, wml.NsA, wml.NsPic} {
		wml.EnsureNamespace(root, wml.Prefix(ns), ns)
	}

	para.AddChild(wml.NewPictureRun(wml.Picture{
		RelID:  relID,
		ID:     nextDrawingID(root),
		Name:   name,
		Width:  width,
		Height: height,
	}))

	e.log.Debug("injected image", "rel", relID, "media", name, "paragraph", opts.ParagraphIndex)
	return relID, nil
}

// nextDrawingID returns one past the highest wp:docPr id in the part.
func nextDrawingID(root *etree.Element) int {
	max := 0
	for _, pr := range wml.Descendants(root, wml.NsWP, "docPr") {
		if v, ok := wml.Attr(pr, "", "id"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > max {
				max = n
			}
		}
	}
	return max + 1
}

// CloneAndInsertParagraph inserts a new paragraph holding text next to the
// template paragraph, after it when insertAfter is set and before it
// otherwise. The template's property block is deep-copied verbatim, except
// that a section break it carries stays with the template. It returns the
// index of the new paragraph.
func (e *Editor) CloneAndInsertParagraph(templateIndex int, text string, insertAfter bool) (int, error) {
	_, tmpl, err := e.paragraphAt(templateIndex)
	if err != nil {
		return 0, err
	}
	parent := tmpl.Parent()
	if parent == nil {
		return 0, formatErr("insert paragraph", "", errors.New("template paragraph is detached"))
	}

	prefix := tmpl.Space
	tag := func(local string) string {
		if prefix == "" {
			return local
		}
		return prefix + ":" + local
	}

	para := etree.NewElement(tag("p"))
	if pPr := wml.ChildW(tmpl, "pPr"); pPr != nil {
		clone := pPr.Copy()
		if sect := wml.ChildW(clone, "sectPr"); sect != nil {
			clone.RemoveChild(sect)
		}
		para.AddChild(clone)
	}
	t := para.CreateElement(tag("r")).CreateElement(tag("t"))
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)

	pos := tmpl.Index()
	newIndex := templateIndex
	if insertAfter {
		pos++
		newIndex++
	}
	parent.InsertChildAt(pos, para)

	e.log.Debug("inserted paragraph", "template", templateIndex, "index", newIndex)
	return newIndex, nil
}

// SubstituteText replaces search in every paragraph of the given parts (all
// eligible parts when none are given). For each paragraph the text of its
// runs is joined; when the joined text contains search, every match of
// search as a regular expression is replaced, the result is written to the
// first text element and all other text elements are emptied. Formatting of
// the later runs across the replaced span is therefore lost. It returns the
// number of paragraphs changed.
func (e *Editor) SubstituteText(search, replace string, parts ...string) (int, error) {
	if search == "" {
		return 0, formatErr("replace text", "", errors.New("empty search pattern"))
	}
	re, err := regexp.Compile(search)
	if err != nil {
		return 0, formatErr("replace text", "", fmt.Errorf("invalid search pattern: %v", err))
	}

	if len(parts) == 0 {
		parts = e.EligibleParts()
	}

	total := 0
	for _, name := range parts {
		doc, err := e.pkg.ReadPart(name)
		if err != nil {
			return 0, err
		}

		changed := 0
		for _, p := range wml.AllDescendants(doc.Root(), wml.NsW, "p") {
			texts := paragraphTexts(p)
			if len(texts) == 0 {
				continue
			}
			var full strings.Builder
			for _, t := range texts {
				full.WriteString(t.Text())
			}
			if !strings.Contains(full.String(), search) {
				continue
			}

			texts[0].SetText(re.ReplaceAllString(full.String(), replace))
			if texts[0].SelectAttr("xml:space") == nil {
				texts[0].CreateAttr("xml:space", "preserve")
			}
			for _, t := range texts[1:] {
				t.SetText("")
			}
			changed++
		}

		if changed > 0 {
			if _, err := e.pkg.Part(name); err != nil {
				return 0, err
			}
			e.log.Debug("replaced text", "part", name, "paragraphs", changed)
		}
		total += changed
	}
	return total, nil
}

// paragraphTexts returns the w:t elements of the runs directly contained in
// p, looking through pass-through wrappers, in document order.
func paragraphTexts(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(parent *etree.Element) {
		for _, el := range parent.ChildElements() {
			switch {
			case wml.IsW(el, "r"):
				out = append(out, wml.ChildrenW(el, "t")...)
			case wml.IsW(el, "sdt"):
				if c := wml.ChildW(el, "sdtContent"); c != nil {
					walk(c)
				}
			case wml.IsW(el, "fldSimple"), passThrough[el.Tag] && wml.IsW(el, el.Tag):
				walk(el)
			}
		}
	}
	walk(p)
	return out
}

// excludedParts are part base-name prefixes that hold no body text.
var excludedParts = []string{"styles", "stylesWithEffects", "fontTable", "settings", "webSettings", "numbering"}

// EligibleParts returns the XML parts under word/ that text substitution
// visits: everything except style, font, settings, numbering and theme
// parts.
func (e *Editor) EligibleParts() []string {
	var out []string
	for _, name := range e.pkg.PartNames() {
		if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		dir, base := path.Split(name)
		if dir != "word/" {
			continue
		}
		excluded := false
		for _, prefix := range excludedParts {
			if strings.HasPrefix(base, prefix) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, name)
		}
	}
	return out
}

// InjectImageFile injects the image at imagePath into paragraph index of the
// archive at inputPath and saves the result to outputPath.
func InjectImageFile(inputPath, outputPath, imagePath string, index, width, height int) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", notFoundErr("inject image", imagePath)
		}
		return "", ioErr("inject image", imagePath, err)
	}

	pkg, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	ed := NewEditor(pkg)
	relID, err := ed.InjectImage(ImageOptions{
		ParagraphIndex: index,
		Data:           data,
		Name:           imagePath,
		Width:          width,
		Height:         height,
	})
	if err != nil {
		return "", err
	}
	return relID, ed.Save(outputPath)
}

// InsertParagraphFile clones paragraph templateIndex of the archive at
// inputPath into a new paragraph holding text and saves to outputPath.
func InsertParagraphFile(inputPath, outputPath string, templateIndex int, text string, insertAfter bool) (int, error) {
	pkg, err := Open(inputPath)
	if err != nil {
		return 0, err
	}
	ed := NewEditor(pkg)
	idx, err := ed.CloneAndInsertParagraph(templateIndex, text, insertAfter)
	if err != nil {
		return 0, err
	}
	return idx, ed.Save(outputPath)
}

// ReplaceTextFile substitutes text in the archive at inputPath and saves to
// outputPath. The archive is saved even when no paragraph matched.
func ReplaceTextFile(inputPath, outputPath, search, replace string, parts ...string) (int, error) {
	pkg, err := Open(inputPath)
	if err != nil {
		return 0, err
	}
	ed := NewEditor(pkg)
	n, err := ed.SubstituteText(search, replace, parts...)
	if err != nil {
		return 0, err
	}
	return n, ed.Save(outputPath)
}
