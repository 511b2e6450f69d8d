package docxedit

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/model"
	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// Reader converts package parts into the block tree.
type Reader struct {
	pkg      *Package
	mediaDir string
	config   *Config
	log      *log.Logger
	warnings *MultiError
}

// NewReader creates a reader over pkg. Referenced images are copied into
// mediaDir; with an empty mediaDir nothing is extracted and image paths are
// archive entry names.
func NewReader(pkg *Package, mediaDir string) *Reader {
	return &Reader{
		pkg:      pkg,
		mediaDir: mediaDir,
		config:   GetGlobalConfig(),
		log:      WithField("component", "reader"),
		warnings: NewMultiError(),
	}
}

// Inspect opens the archive at docPath and reads it, extracting images to
// the scratch media directory beside it.
func Inspect(docPath string) (*model.Document, error) {
	pkg, err := Open(docPath)
	if err != nil {
		return nil, err
	}
	return NewReader(pkg, MediaDir(docPath)).Read()
}

// Warnings returns the non-fatal problems met while reading (skipped images).
func (r *Reader) Warnings() []error {
	return r.warnings.Errors()
}

// Read parses the main document part, its sections, and every header and
// footer part.
func (r *Reader) Read() (*model.Document, error) {
	main := r.pkg.MainDocumentPart()
	sections, err := r.ReadBody(main)
	if err != nil {
		return nil, err
	}

	out := &model.Document{
		Headers:  []model.HeaderFooter{},
		Footers:  []model.HeaderFooter{},
		Sections: sections,
	}

	for _, name := range r.pkg.PartNames() {
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		var dst *[]model.HeaderFooter
		switch {
		case strings.HasPrefix(name, "word/header"):
			dst = &out.Headers
		case strings.HasPrefix(name, "word/footer"):
			dst = &out.Footers
		default:
			continue
		}
		paras, err := r.ReadParagraphs(name)
		if err != nil {
			return nil, err
		}
		*dst = append(*dst, model.HeaderFooter{Name: name, Content: paras})
	}

	return out, nil
}

// ReadBody parses a document part into sections. A paragraph whose
// properties carry w:sectPr closes a section; the body-level w:sectPr
// describes the last one.
func (r *Reader) ReadBody(partName string) ([]model.Section, error) {
	doc, err := r.pkg.ReadPart(partName)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if !wml.IsW(root, "document") {
		return nil, formatErr("read body", partName, fmt.Errorf("unexpected root <%s>", root.FullTag()))
	}
	body := wml.ChildW(root, "body")
	if body == nil {
		return nil, formatErr("read body", partName, errors.New("missing w:body"))
	}

	rels, err := r.pkg.Relationships(partName)
	if err != nil {
		return nil, err
	}

	var (
		sections []model.Section
		current  model.Section
	)
	closeSection := func(sectPr *etree.Element) {
		r.sectionProperties(&current, sectPr, rels)
		if current.Children == nil {
			current.Children = model.Blocks{}
		}
		sections = append(sections, current)
		current = model.Section{}
	}

	var walk func(parent *etree.Element) error
	walk = func(parent *etree.Element) error {
		for _, el := range parent.ChildElements() {
			switch {
			case wml.IsW(el, "p"):
				current.Children = append(current.Children, r.paragraph(el, rels))
				if sectPr := wml.ChildW(wml.ChildW(el, "pPr"), "sectPr"); sectPr != nil {
					closeSection(sectPr)
				}
			case wml.IsW(el, "tbl"):
				current.Children = append(current.Children, r.table(el, rels, 1))
			case wml.IsW(el, "sdt"):
				if content := wml.ChildW(el, "sdtContent"); content != nil {
					if err := walk(content); err != nil {
						return err
					}
				}
			case wml.IsW(el, "sectPr"):
				closeSection(el)
			}
		}
		return nil
	}
	if err := walk(body); err != nil {
		return nil, err
	}

	if len(current.Children) > 0 || len(sections) == 0 {
		closeSection(nil)
	}
	return sections, nil
}

// ReadParagraphs parses every paragraph of a part as a flat list, in
// document order. Used for headers and footers.
func (r *Reader) ReadParagraphs(partName string) (model.Paragraphs, error) {
	doc, err := r.pkg.ReadPart(partName)
	if err != nil {
		return nil, err
	}
	rels, err := r.pkg.Relationships(partName)
	if err != nil {
		return nil, err
	}

	out := model.Paragraphs{}
	for _, p := range wml.Descendants(doc.Root(), wml.NsW, "p") {
		out = append(out, r.paragraph(p, rels))
	}
	return out, nil
}

// sectionProperties copies page setup and default header/footer references
// from sectPr into sec. Values stay in twentieths of a point.
func (r *Reader) sectionProperties(sec *model.Section, sectPr *etree.Element, rels *Relationships) {
	if sectPr == nil {
		return
	}
	props := &model.PageProperties{}
	used := false

	if mar := wml.ChildW(sectPr, "pgMar"); mar != nil {
		m := &model.Margins{}
		for key, dst := range map[string]**int{
			"top": &m.Top, "bottom": &m.Bottom, "left": &m.Left, "right": &m.Right,
			"header": &m.Header, "footer": &m.Footer, "gutter": &m.Gutter,
		} {
			if v, ok := wml.IntAttr(mar, key); ok {
				*dst = model.Int(v)
			}
		}
		props.Margins = m
		used = true
	}

	if sz := wml.ChildW(sectPr, "pgSz"); sz != nil {
		if v, ok := wml.IntAttr(sz, "w"); ok {
			props.Width = model.Int(v)
		}
		if v, ok := wml.IntAttr(sz, "h"); ok {
			props.Height = model.Int(v)
		}
		if o, ok := wml.Attr(sz, wml.NsW, "orient"); ok {
			props.Orientation = o
		}
		used = true
	}
	if used {
		sec.Properties = props
	}

	for _, ref := range sectPr.ChildElements() {
		var dst *string
		switch {
		case wml.IsW(ref, "headerReference"):
			dst = &sec.Header
		case wml.IsW(ref, "footerReference"):
			dst = &sec.Footer
		default:
			continue
		}
		if kind, ok := wml.Attr(ref, wml.NsW, "type"); ok && kind != "default" {
			continue
		}
		id, _ := wml.Attr(ref, wml.NsR, "id")
		if target, ok := rels.Resolve(id); ok {
			*dst = target
		}
	}
}

func (r *Reader) paragraph(p *etree.Element, rels *Relationships) *model.Paragraph {
	para := &model.Paragraph{}
	if pPr := wml.ChildW(p, "pPr"); pPr != nil {
		paragraphProperties(para, pPr)
	}

	w := &inlineWalker{reader: r, rels: rels}
	w.walk(p)
	para.Children = w.out

	if len(para.Children) == 0 {
		para.Children = model.Inlines{&model.TextRun{}}
	}
	return para
}

func paragraphProperties(para *model.Paragraph, pPr *etree.Element) {
	if v, ok := wml.Val(wml.ChildW(pPr, "jc")); ok {
		para.Alignment = alignmentFromNative(v)
	}
	if v, ok := wml.Val(wml.ChildW(pPr, "pStyle")); ok {
		para.StyleName = v
	}

	if sp := wml.ChildW(pPr, "spacing"); sp != nil {
		s := &model.Spacing{}
		if v, ok := wml.IntAttr(sp, "before"); ok {
			s.Before = model.Int(v)
		}
		if v, ok := wml.IntAttr(sp, "after"); ok {
			s.After = model.Int(v)
		}
		if v, ok := wml.IntAttr(sp, "line"); ok {
			s.Line = model.Int(v)
		}
		s.LineRule, _ = wml.Attr(sp, wml.NsW, "lineRule")
		para.Spacing = s
	}

	if ind := wml.ChildW(pPr, "ind"); ind != nil {
		in := &model.Indent{}
		for _, key := range []string{"left", "start"} {
			if v, ok := wml.IntAttr(ind, key); ok {
				in.Left = model.Int(v)
				break
			}
		}
		for _, key := range []string{"right", "end"} {
			if v, ok := wml.IntAttr(ind, key); ok {
				in.Right = model.Int(v)
				break
			}
		}
		if v, ok := wml.IntAttr(ind, "hanging"); ok {
			in.Hanging = model.Int(v)
		}
		if v, ok := wml.IntAttr(ind, "firstLine"); ok {
			in.FirstLine = model.Int(v)
		}
		para.Indent = in
	}
}

func (r *Reader) table(tbl *etree.Element, rels *Relationships, depth int) *model.Table {
	if depth > maxTableDepth {
		r.log.Debug("nested table collapsed to placeholder", "depth", depth)
		return placeholderTable()
	}

	t := &model.Table{Rows: []model.Row{}}
	for _, tr := range wml.ChildrenW(tbl, "tr") {
		row := model.Row{Cells: []model.Cell{}}
		for _, tc := range wml.ChildrenW(tr, "tc") {
			cell := model.Cell{Content: model.Blocks{}}
			for _, el := range tc.ChildElements() {
				switch {
				case wml.IsW(el, "p"):
					cell.Content = append(cell.Content, r.paragraph(el, rels))
				case wml.IsW(el, "tbl"):
					cell.Content = append(cell.Content, r.table(el, rels, depth+1))
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// image copies the media a drawing references out of the archive and
// describes it. It returns nil when the reference cannot be resolved.
func (r *Reader) image(drawing *etree.Element, rels *Relationships) *model.Image {
	relID, ok := wml.PictureRelID(drawing)
	if !ok {
		return nil
	}
	entry, ok := rels.Resolve(relID)
	if !ok {
		r.skipImage(fmt.Errorf("relationship %s in %s does not resolve", relID, rels.owner))
		return nil
	}
	data, err := r.pkg.ReadFile(entry)
	if err != nil {
		r.skipImage(err)
		return nil
	}

	img := &model.Image{
		Path:   entry,
		Width:  r.config.DefaultImageWidth,
		Height: r.config.DefaultImageHeight,
	}
	if cx, cy, ok := wml.PictureExtent(drawing); ok {
		img.Width = wml.EMUToPixels(cx)
		img.Height = wml.EMUToPixels(cy)
	}

	if r.mediaDir != "" {
		local := filepath.Join(r.mediaDir, path.Base(entry))
		if err := os.MkdirAll(r.mediaDir, 0o755); err != nil {
			r.skipImage(ioErr("extract media", r.mediaDir, err))
			return nil
		}
		if err := os.WriteFile(local, data, 0o644); err != nil {
			r.skipImage(ioErr("extract media", local, err))
			return nil
		}
		r.log.Debug("extracted media", "entry", entry, "path", local)
		img.Path = local
	}
	return img
}

func (r *Reader) skipImage(err error) {
	r.log.Warn("skipping image", "err", err)
	r.warnings.Add(err)
}

// inlineWalker flattens the inline content of a paragraph into model
// children, tracking complex field state across runs.
type inlineWalker struct {
	reader *Reader
	rels   *Relationships
	out    model.Inlines
	fields []*fieldFrame
}

type fieldFrame struct {
	instr     strings.Builder
	separated bool
	page      bool
	emitted   bool
}

// suppressed reports whether run content is currently field instruction or
// the cached result of a PAGE field.
func (w *inlineWalker) suppressed() bool {
	for _, f := range w.fields {
		if !f.separated || f.page {
			return true
		}
	}
	return false
}

// passThrough lists wrappers whose runs are read as direct paragraph children.
var passThrough = map[string]bool{
	"hyperlink":  true,
	"smartTag":   true,
	"customXml":  true,
	"sdtContent": true,
	"ins":        true,
	"moveTo":     true,
	"bdo":        true,
	"dir":        true,
}

func (w *inlineWalker) walk(parent *etree.Element) {
	for _, el := range parent.ChildElements() {
		switch {
		case wml.IsW(el, "r"):
			w.run(el)
		case wml.IsW(el, "fldSimple"):
			instr, _ := wml.Attr(el, wml.NsW, "instr")
			if wml.IsPageInstruction(instr) {
				w.out = append(w.out, &model.PageNumber{})
				continue
			}
			w.walk(el)
		case wml.IsW(el, "sdt"):
			if content := wml.ChildW(el, "sdtContent"); content != nil {
				w.walk(content)
			}
		case passThrough[el.Tag] && wml.IsW(el, el.Tag):
			w.walk(el)
		}
	}
}

func (w *inlineWalker) run(r *etree.Element) {
	format := runFormat(wml.ChildW(r, "rPr"))
	var text strings.Builder
	hasText := false

	flush := func() {
		if !hasText {
			return
		}
		tr := format
		tr.Text = text.String()
		w.out = append(w.out, &tr)
		text.Reset()
		hasText = false
	}
	addText := func(s string) {
		if w.suppressed() {
			return
		}
		text.WriteString(s)
		hasText = true
	}

	for _, el := range r.ChildElements() {
		switch {
		case wml.IsW(el, "t"):
			addText(el.Text())
		case wml.IsW(el, "tab"):
			addText("\t")
		case wml.IsW(el, "br"), wml.IsW(el, "cr"):
			addText("\n")
		case wml.IsW(el, "fldChar"):
			flush()
			w.fieldChar(el)
		case wml.IsW(el, "instrText"):
			if n := len(w.fields); n > 0 && !w.fields[n-1].separated {
				w.fields[n-1].instr.WriteString(el.Text())
			}
		case wml.IsW(el, "drawing"), wml.IsW(el, "pict"):
			flush()
			w.picture(el)
		case el.Tag == "AlternateContent":
			flush()
			if d := wml.Find(el, wml.NsW, "drawing"); d != nil {
				w.picture(d)
			} else if p := wml.Find(el, wml.NsW, "pict"); p != nil {
				w.picture(p)
			}
		}
	}
	flush()
}

func (w *inlineWalker) picture(el *etree.Element) {
	if w.suppressed() {
		return
	}
	if img := w.reader.image(el, w.rels); img != nil {
		w.out = append(w.out, img)
	}
}

func (w *inlineWalker) fieldChar(el *etree.Element) {
	kind, _ := wml.Attr(el, wml.NsW, "fldCharType")
	switch kind {
	case "begin":
		w.fields = append(w.fields, &fieldFrame{})
	case "separate":
		if n := len(w.fields); n > 0 {
			w.top().separated = true
			w.resolvePage()
		}
	case "end":
		if n := len(w.fields); n > 0 {
			w.resolvePage()
			w.fields = w.fields[:n-1]
		}
	}
}

func (w *inlineWalker) top() *fieldFrame {
	return w.fields[len(w.fields)-1]
}

// resolvePage emits the page number once the instruction of the innermost
// field is complete.
func (w *inlineWalker) resolvePage() {
	f := w.top()
	if f.emitted {
		return
	}
	f.emitted = true
	if wml.IsPageInstruction(f.instr.String()) {
		f.page = true
		outer := w.fields[:len(w.fields)-1]
		for _, o := range outer {
			if !o.separated || o.page {
				return
			}
		}
		w.out = append(w.out, &model.PageNumber{})
	}
}

func runFormat(rPr *etree.Element) model.TextRun {
	var tr model.TextRun
	if rPr == nil {
		return tr
	}
	tr.Bold = wml.Toggle(wml.ChildW(rPr, "b"))
	tr.Italic = wml.Toggle(wml.ChildW(rPr, "i"))
	tr.Underline = wml.Toggle(wml.ChildW(rPr, "u"))
	if v, ok := wml.IntAttr(wml.ChildW(rPr, "sz"), "val"); ok {
		tr.Size = wml.HalfPointsToPoints(v)
	}
	if v, ok := wml.Val(wml.ChildW(rPr, "color")); ok && v != "auto" {
		tr.Color = v
	}
	if v, ok := wml.Attr(wml.ChildW(rPr, "rFonts"), wml.NsW, "ascii"); ok {
		tr.Font = v
	}
	return tr
}

func alignmentFromNative(v string) string {
	if v == "both" {
		return "justified"
	}
	return v
}

// MainDocumentPart returns the part the package root relationships name as
// the main document, falling back to word/document.xml.
func (p *Package) MainDocumentPart() string {
	if p.Has(wml.PartRootRels) {
		if rels, err := p.Relationships(""); err == nil {
			for _, rel := range rels.All() {
				if rel.Type == wml.RelOfficeDocument {
					return strings.TrimPrefix(rel.Target, "/")
				}
			}
		}
	}
	return wml.PartDocument
}
