package docxedit

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/model"
	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// maxTableDepth is the deepest table nesting kept; a table nested deeper is
// replaced by an empty single-cell placeholder on read and write.
const maxTableDepth = 2

func placeholderTable() *model.Table {
	return &model.Table{Rows: []model.Row{{Cells: []model.Cell{{
		Content: model.Blocks{&model.Paragraph{Children: model.Inlines{&model.TextRun{}}}},
	}}}}}
}

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// Writer builds a new package from a block tree.
type Writer struct {
	pkg      *Package
	config   *Config
	log      *log.Logger
	warnings *MultiError

	drawingID int
	mediaSeq  int
	headerSeq int
	footerSeq int
	written   map[*model.HeaderFooter]string
}

// NewWriter creates a writer targeting a fresh, empty package.
func NewWriter() *Writer {
	return &Writer{
		pkg:      New(),
		config:   GetGlobalConfig(),
		log:      WithField("component", "writer"),
		warnings: NewMultiError(),
		written:  make(map[*model.HeaderFooter]string),
	}
}

// Create writes doc as a new archive at path.
func Create(path string, doc *model.Document) error {
	w := NewWriter()
	pkg, err := w.Write(doc)
	if err != nil {
		return err
	}
	return pkg.Save(path)
}

// Warnings returns the non-fatal problems met while writing (skipped images).
func (w *Writer) Warnings() []error {
	return w.warnings.Errors()
}

// Write builds every part for doc and returns the package, ready to save.
func (w *Writer) Write(doc *model.Document) (*Package, error) {
	if doc == nil {
		return nil, formatErr("write", "", errors.New("nil document"))
	}
	if err := w.skeleton(); err != nil {
		return nil, err
	}

	root, body := newDocumentPart()
	w.pkg.SetPart(wml.PartDocument, root)

	sections := doc.Sections
	if len(sections) == 0 {
		sections = []model.Section{{}}
	}

	for i := range sections {
		sec := &sections[i]
		width, err := textWidth(sec.Properties)
		if err != nil {
			return nil, err
		}

		var lastPara *etree.Element
		for j, block := range sec.Children {
			el, err := w.block(wml.PartDocument, block, 1, width)
			if err != nil {
				return nil, fmt.Errorf("section %d block %d: %w", i, j, err)
			}
			body.AddChild(el)
			lastPara = nil
			if wml.IsW(el, "p") {
				lastPara = el
			}
		}

		sectPr, err := w.sectionProperties(doc, sec)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}

		if i == len(sections)-1 {
			body.AddChild(sectPr)
			continue
		}
		if lastPara == nil {
			lastPara = wml.AddW(body, "p")
		}
		pPr := wml.ChildW(lastPara, "pPr")
		if pPr == nil {
			pPr = wml.NewW("pPr")
			lastPara.InsertChildAt(0, pPr)
		}
		pPr.AddChild(sectPr)
	}

	return w.pkg, nil
}

// skeleton installs the package-level parts every document needs.
func (w *Writer) skeleton() error {
	ct := etree.NewDocument()
	ct.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	types := ct.CreateElement("Types")
	types.CreateAttr("xmlns", wml.NsCT)
	for _, d := range [][2]string{{"rels", wml.CTRelationships}, {"xml", wml.CTXML}} {
		def := types.CreateElement("Default")
		def.CreateAttr("Extension", d[0])
		def.CreateAttr("ContentType", d[1])
	}
	w.pkg.SetPart(wml.PartContentTypes, ct)

	rootRels, err := w.pkg.Relationships("")
	if err != nil {
		return err
	}
	if _, err := rootRels.Add(wml.RelOfficeDocument, wml.PartDocument); err != nil {
		return err
	}
	if err := w.pkg.setOverride(wml.PartDocument, wml.CTDocument); err != nil {
		return err
	}

	w.pkg.SetPart(wml.PartStyles, newStylesPart())
	docRels, err := w.pkg.Relationships(wml.PartDocument)
	if err != nil {
		return err
	}
	if _, err := docRels.Add(wml.RelStyles, "styles.xml"); err != nil {
		return err
	}
	return w.pkg.setOverride(wml.PartStyles, wml.CTStyles)
}

func newRootPart(tag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement(tag)
	for _, prefix := range []string{"w", "r", "wp", "a", "pic"} {
		root.CreateAttr("xmlns:"+prefix, nsForPrefix(prefix))
	}
	return doc, root
}

func nsForPrefix(prefix string) string {
	switch prefix {
	case "w":
		return wml.NsW
	case "r":
		return wml.NsR
	case "wp":
		return wml.NsWP
	case "a":
		return wml.NsA
	case "pic":
		return wml.NsPic
	}
	return ""
}

func newDocumentPart() (*etree.Document, *etree.Element) {
	doc, root := newRootPart("w:document")
	return doc, wml.AddW(root, "body")
}

// textWidth returns the width between the page margins.
func textWidth(props *model.PageProperties) (int, error) {
	width, left, right := wml.DefaultPageWidth, wml.DefaultMargin, wml.DefaultMargin
	if props != nil {
		switch props.Orientation {
		case "", "portrait":
		case "landscape":
			width = wml.DefaultPageHeight
		default:
			return 0, formatErr("write", "", fmt.Errorf("unknown orientation %q", props.Orientation))
		}
		if props.Width != nil {
			width = *props.Width
		}
		if m := props.Margins; m != nil {
			if m.Left != nil {
				left = *m.Left
			}
			if m.Right != nil {
				right = *m.Right
			}
		}
	}
	if width-left-right <= 0 {
		return 0, formatErr("write", "", fmt.Errorf("margins leave no text width (%d-%d-%d)", width, left, right))
	}
	return width - left - right, nil
}

func (w *Writer) sectionProperties(doc *model.Document, sec *model.Section) (*etree.Element, error) {
	sectPr := wml.NewW("sectPr")

	if hdr := pickHeader(doc, sec); hdr != nil {
		id, err := w.headerFooter(hdr, "header")
		if err != nil {
			return nil, err
		}
		ref := wml.AddW(sectPr, "headerReference")
		wml.SetW(ref, "type", "default")
		ref.CreateAttr("r:id", id)
	}
	if ftr := pickFooter(doc, sec); ftr != nil {
		id, err := w.headerFooter(ftr, "footer")
		if err != nil {
			return nil, err
		}
		ref := wml.AddW(sectPr, "footerReference")
		wml.SetW(ref, "type", "default")
		ref.CreateAttr("r:id", id)
	}

	pageW, pageH := wml.DefaultPageWidth, wml.DefaultPageHeight
	orient := ""
	margins := map[string]int{
		"top": wml.DefaultMargin, "right": wml.DefaultMargin, "bottom": wml.DefaultMargin, "left": wml.DefaultMargin,
		"header": wml.DefaultHeaderDist, "footer": wml.DefaultHeaderDist, "gutter": 0,
	}
	if p := sec.Properties; p != nil {
		if p.Orientation == "landscape" {
			pageW, pageH = pageH, pageW
			orient = "landscape"
		}
		if p.Width != nil {
			pageW = *p.Width
		}
		if p.Height != nil {
			pageH = *p.Height
		}
		if m := p.Margins; m != nil {
			for key, v := range map[string]*int{
				"top": m.Top, "right": m.Right, "bottom": m.Bottom, "left": m.Left,
				"header": m.Header, "footer": m.Footer, "gutter": m.Gutter,
			} {
				if v != nil {
					margins[key] = *v
				}
			}
		}
	}

	sz := wml.AddW(sectPr, "pgSz")
	wml.SetInt(sz, "w", pageW)
	wml.SetInt(sz, "h", pageH)
	if orient != "" {
		wml.SetW(sz, "orient", orient)
	}
	mar := wml.AddW(sectPr, "pgMar")
	for _, key := range []string{"top", "right", "bottom", "left", "header", "footer", "gutter"} {
		wml.SetInt(mar, key, margins[key])
	}
	return sectPr, nil
}

// headerCandidates returns the definitions a section may bind: its inline
// ones, else the named one, else the document-level list.
func headerCandidates(all []model.HeaderFooter, inline []model.HeaderFooter, name string) []*model.HeaderFooter {
	var out []*model.HeaderFooter
	switch {
	case len(inline) > 0:
		for i := range inline {
			out = append(out, &inline[i])
		}
	case name != "":
		for i := range all {
			if all[i].Name == name {
				out = append(out, &all[i])
			}
		}
	default:
		for i := range all {
			out = append(out, &all[i])
		}
	}
	return out
}

func pickHeader(doc *model.Document, sec *model.Section) *model.HeaderFooter {
	c := headerCandidates(doc.Headers, sec.Headers, sec.Header)
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// pickFooter binds the first footer that carries a page number, else the
// first footer.
func pickFooter(doc *model.Document, sec *model.Section) *model.HeaderFooter {
	c := headerCandidates(doc.Footers, sec.Footers, sec.Footer)
	if len(c) == 0 {
		return nil
	}
	for _, f := range c {
		if hasPageNumber(f.Content) {
			return f
		}
	}
	return c[0]
}

func hasPageNumber(paras model.Paragraphs) bool {
	for _, p := range paras {
		if p == nil {
			continue
		}
		for _, c := range p.Children {
			if _, ok := c.(*model.PageNumber); ok {
				return true
			}
		}
	}
	return false
}

// headerFooter writes a header or footer part (once per definition) and
// returns the document relationship id bound to it.
func (w *Writer) headerFooter(hf *model.HeaderFooter, kind string) (string, error) {
	var (
		seq     *int
		relType string
		ctype   string
		tag     string
	)
	if kind == "header" {
		seq, relType, ctype, tag = &w.headerSeq, wml.RelHeader, wml.CTHeader, "w:hdr"
	} else {
		seq, relType, ctype, tag = &w.footerSeq, wml.RelFooter, wml.CTFooter, "w:ftr"
	}

	docRels, err := w.pkg.Relationships(wml.PartDocument)
	if err != nil {
		return "", err
	}

	partName, ok := w.written[hf]
	if !ok {
		*seq++
		partName = fmt.Sprintf("word/%s%d.xml", kind, *seq)
		doc, root := newRootPart(tag)
		w.pkg.SetPart(partName, doc)
		for i, p := range hf.Content {
			el, err := w.paragraph(partName, p)
			if err != nil {
				return "", fmt.Errorf("%s paragraph %d: %w", kind, i, err)
			}
			root.AddChild(el)
		}
		if len(hf.Content) == 0 {
			wml.AddW(root, "p")
		}
		if err := w.pkg.setOverride(partName, ctype); err != nil {
			return "", err
		}
		w.written[hf] = partName
	}

	target := strings.TrimPrefix(partName, "word/")
	for _, rel := range docRels.All() {
		if rel.Type == relType && rel.Target == target {
			return rel.ID, nil
		}
	}
	return docRels.Add(relType, target)
}

func (w *Writer) block(part string, b model.Block, depth, width int) (*etree.Element, error) {
	switch v := b.(type) {
	case *model.Paragraph:
		return w.paragraph(part, v)
	case *model.Table:
		return w.table(part, v, depth, width)
	case nil:
		return nil, formatErr("write", part, errors.New("nil block"))
	default:
		return nil, formatErr("write", part, fmt.Errorf("unknown block type %T", b))
	}
}

func (w *Writer) paragraph(part string, p *model.Paragraph) (*etree.Element, error) {
	if p == nil {
		return nil, formatErr("write", part, errors.New("nil paragraph"))
	}
	para := wml.NewW("p")
	if pPr := paragraphPropertiesElement(p); pPr != nil {
		para.AddChild(pPr)
	}

	if p.Text != "" {
		para.AddChild(textRun(&model.TextRun{Text: p.Text}))
	}
	for i, c := range p.Children {
		switch v := c.(type) {
		case *model.TextRun:
			para.AddChild(textRun(v))
		case *model.Image:
			run, err := w.picture(part, v)
			if err != nil {
				return nil, err
			}
			if run != nil {
				para.AddChild(run)
			}
		case *model.PageNumber:
			for _, r := range wml.NewPageNumberRuns() {
				para.AddChild(r)
			}
		default:
			return nil, formatErr("write", part, fmt.Errorf("child %d: unknown inline type %T", i, c))
		}
	}

	if len(wml.ChildrenW(para, "r")) == 0 {
		wml.AddText(wml.AddW(para, "r"), "")
	}
	return para, nil
}

func paragraphPropertiesElement(p *model.Paragraph) *etree.Element {
	pPr := wml.NewW("pPr")

	style := p.StyleName
	if style == "" {
		style = p.Heading
	}
	if style != "" {
		wml.AddVal(pPr, "pStyle", style)
	}

	if s := p.Spacing; s != nil {
		sp := wml.AddW(pPr, "spacing")
		setOptional(sp, "before", s.Before)
		setOptional(sp, "after", s.After)
		setOptional(sp, "line", s.Line)
		if s.LineRule != "" {
			wml.SetW(sp, "lineRule", s.LineRule)
		}
	}

	if in := p.Indent; in != nil {
		ind := wml.AddW(pPr, "ind")
		setOptional(ind, "left", in.Left)
		setOptional(ind, "right", in.Right)
		setOptional(ind, "hanging", in.Hanging)
		setOptional(ind, "firstLine", in.FirstLine)
	}

	if p.Alignment != "" {
		wml.AddVal(pPr, "jc", alignmentToNative(p.Alignment))
	}

	if len(pPr.ChildElements()) == 0 {
		return nil
	}
	return pPr
}

func setOptional(e *etree.Element, key string, v *int) {
	if v != nil {
		wml.SetInt(e, key, *v)
	}
}

func alignmentToNative(v string) string {
	if v == "justified" || v == "justify" {
		return "both"
	}
	return v
}

// textRun builds a run, splitting text on tabs and line breaks.
func textRun(tr *model.TextRun) *etree.Element {
	run := wml.NewW("r")

	rPr := wml.AddW(run, "rPr")
	if tr.Font != "" {
		fonts := wml.AddW(rPr, "rFonts")
		wml.SetW(fonts, "ascii", tr.Font)
		wml.SetW(fonts, "hAnsi", tr.Font)
	}
	if tr.Bold {
		wml.AddW(rPr, "b")
	}
	if tr.Italic {
		wml.AddW(rPr, "i")
	}
	if c := strings.TrimPrefix(tr.Color, "#"); c != "" && hexColor.MatchString(c) {
		wml.AddVal(rPr, "color", c)
	}
	if tr.Size > 0 {
		hp := strconv.Itoa(wml.PointsToHalfPoints(tr.Size))
		wml.AddVal(rPr, "sz", hp)
		wml.AddVal(rPr, "szCs", hp)
	}
	if tr.Underline {
		wml.AddVal(rPr, "u", "single")
	}
	if len(rPr.ChildElements()) == 0 {
		run.RemoveChild(rPr)
	}

	var seg strings.Builder
	flush := func(force bool) {
		if seg.Len() > 0 || force {
			wml.AddText(run, seg.String())
			seg.Reset()
		}
	}
	for _, ch := range tr.Text {
		switch ch {
		case '\t':
			flush(false)
			wml.AddW(run, "tab")
		case '\n':
			flush(false)
			wml.AddW(run, "br")
		case '\r':
		default:
			seg.WriteRune(ch)
		}
	}
	flush(tr.Text == "")
	return run
}

// picture embeds the image file and returns its run. An unreadable file is
// skipped: the result is nil with no error.
func (w *Writer) picture(part string, img *model.Image) (*etree.Element, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		w.log.Warn("skipping unreadable image", "path", img.Path, "err", err)
		w.warnings.Add(NewDocumentError("embed image", img.Path, err))
		return nil, nil
	}

	width, height := resolveImageSize(data, img.Width, img.Height, w.config.DefaultImageWidth, w.config.DefaultImageHeight)

	w.mediaSeq++
	name := fmt.Sprintf("image%d.%s", w.mediaSeq, imageExtension(img.Path, data))
	target, err := w.pkg.AddMedia(data, name)
	if err != nil {
		return nil, err
	}
	rels, err := w.pkg.Relationships(part)
	if err != nil {
		return nil, err
	}
	relID, err := rels.Add(wml.RelImage, target)
	if err != nil {
		return nil, err
	}

	w.drawingID++
	return wml.NewPictureRun(wml.Picture{
		RelID:  relID,
		ID:     w.drawingID,
		Name:   name,
		Width:  width,
		Height: height,
	}), nil
}

func (w *Writer) table(part string, t *model.Table, depth, width int) (*etree.Element, error) {
	if depth > maxTableDepth {
		w.log.Debug("nested table replaced by placeholder", "depth", depth)
		t = placeholderTable()
	}
	if t == nil {
		return nil, formatErr("write", part, errors.New("nil table"))
	}
	if len(t.Rows) == 0 {
		return nil, formatErr("write", part, errors.New("table has no rows"))
	}

	cols := 0
	for _, row := range t.Rows {
		if len(row.Cells) > cols {
			cols = len(row.Cells)
		}
	}
	if cols == 0 {
		return nil, formatErr("write", part, errors.New("table has no cells"))
	}
	cellWidth := width / cols

	tbl := wml.NewW("tbl")
	tbl.AddChild(wml.NewTableProperties(width))
	tbl.AddChild(wml.NewTableGrid(width, cols))

	for ri, row := range t.Rows {
		tr := wml.AddW(tbl, "tr")
		for ci, cell := range row.Cells {
			tc := wml.AddW(tr, "tc")
			tc.AddChild(wml.NewCellProperties(cellWidth))

			var last *etree.Element
			for bi, b := range cell.Content {
				el, err := w.block(part, b, depth+1, cellWidth)
				if err != nil {
					return nil, fmt.Errorf("row %d cell %d block %d: %w", ri, ci, bi, err)
				}
				tc.AddChild(el)
				last = el
			}
			// a cell must end with a paragraph
			if last == nil || !wml.IsW(last, "p") {
				wml.AddText(wml.AddW(wml.AddW(tc, "p"), "r"), "")
			}
		}
	}
	return tbl, nil
}
