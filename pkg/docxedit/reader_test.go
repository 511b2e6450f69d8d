package docxedit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/model"
	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

func readBody(t *testing.T, body string, extra ...zipEntry) *model.Document {
	t.Helper()
	pkg, err := OpenBytes(buildDocx(t, body, extra...))
	require.NoError(t, err)
	doc, err := NewReader(pkg, "").Read()
	require.NoError(t, err)
	return doc
}

func onlyParagraph(t *testing.T, doc *model.Document) *model.Paragraph {
	t.Helper()
	require.Len(t, doc.Sections, 1)
	require.Len(t, doc.Sections[0].Children, 1)
	p, ok := doc.Sections[0].Children[0].(*model.Paragraph)
	require.True(t, ok, "expected paragraph, got %T", doc.Sections[0].Children[0])
	return p
}

func TestReader_RunFormatting(t *testing.T) {
	doc := readBody(t, `<w:p><w:r><w:rPr><w:rFonts w:ascii="Arial"/><w:b/><w:i w:val="0"/><w:u w:val="single"/><w:color w:val="FF0000"/><w:sz w:val="24"/></w:rPr><w:t>Hello</w:t></w:r></w:p>`)
	p := onlyParagraph(t, doc)
	require.Len(t, p.Children, 1)
	assert.Equal(t, &model.TextRun{
		Text:      "Hello",
		Bold:      true,
		Underline: true,
		Size:      12,
		Color:     "FF0000",
		Font:      "Arial",
	}, p.Children[0])
}

func TestReader_AutoColorIsDropped(t *testing.T) {
	doc := readBody(t, `<w:p><w:r><w:rPr><w:color w:val="auto"/></w:rPr><w:t>x</w:t></w:r></w:p>`)
	run := onlyParagraph(t, doc).Children[0].(*model.TextRun)
	assert.Empty(t, run.Color)
}

func TestReader_ParagraphProperties(t *testing.T) {
	doc := readBody(t, `<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:spacing w:before="240" w:after="60" w:line="276" w:lineRule="auto"/><w:ind w:start="720" w:hanging="360"/><w:jc w:val="both"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>`)
	p := onlyParagraph(t, doc)
	assert.Equal(t, "Heading1", p.StyleName)
	assert.Equal(t, "justified", p.Alignment)
	require.NotNil(t, p.Spacing)
	assert.Equal(t, 240, *p.Spacing.Before)
	assert.Equal(t, 60, *p.Spacing.After)
	assert.Equal(t, 276, *p.Spacing.Line)
	assert.Equal(t, "auto", p.Spacing.LineRule)
	require.NotNil(t, p.Indent)
	assert.Equal(t, 720, *p.Indent.Left)
	assert.Equal(t, 360, *p.Indent.Hanging)
	assert.Nil(t, p.Indent.Right)
}

func TestReader_EmptyParagraphHasEmptyRun(t *testing.T) {
	doc := readBody(t, `<w:p/>`)
	p := onlyParagraph(t, doc)
	assert.Equal(t, model.Inlines{&model.TextRun{}}, p.Children)
}

func TestReader_TabsAndBreaks(t *testing.T) {
	doc := readBody(t, `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>`)
	p := onlyParagraph(t, doc)
	require.Len(t, p.Children, 1)
	assert.Equal(t, "a\tb\nc", p.Children[0].(*model.TextRun).Text)
}

func TestReader_PassThroughWrappers(t *testing.T) {
	doc := readBody(t, `<w:p>`+
		`<w:hyperlink r:id="rId9"><w:r><w:t>link</w:t></w:r></w:hyperlink>`+
		`<w:ins w:id="1"><w:r><w:t> inserted</w:t></w:r></w:ins>`+
		`<w:del w:id="2"><w:r><w:delText>gone</w:delText></w:r></w:del>`+
		`<w:sdt><w:sdtContent><w:r><w:t> sdt</w:t></w:r></w:sdtContent></w:sdt>`+
		`<w:smartTag><w:r><w:t> tag</w:t></w:r></w:smartTag>`+
		`</w:p>`)
	p := onlyParagraph(t, doc)
	assert.Equal(t, "link inserted sdt tag", p.PlainText())
}

func TestReader_ComplexPageField(t *testing.T) {
	doc := readBody(t, `<w:p>`+
		`<w:r><w:t>Page </w:t></w:r>`+
		`<w:r><w:fldChar w:fldCharType="begin"/></w:r>`+
		`<w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>`+
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>`+
		`<w:r><w:t>3</w:t></w:r>`+
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>`+
		`<w:r><w:t> of </w:t></w:r>`+
		`<w:r><w:fldChar w:fldCharType="begin"/></w:r>`+
		`<w:r><w:instrText xml:space="preserve"> NUMPAGES </w:instrText></w:r>`+
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>`+
		`<w:r><w:t>9</w:t></w:r>`+
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>`+
		`</w:p>`)
	p := onlyParagraph(t, doc)
	require.Len(t, p.Children, 4)
	assert.Equal(t, "Page ", p.Children[0].(*model.TextRun).Text)
	assert.IsType(t, &model.PageNumber{}, p.Children[1])
	assert.Equal(t, " of ", p.Children[2].(*model.TextRun).Text)
	// other fields keep their cached result as text
	assert.Equal(t, "9", p.Children[3].(*model.TextRun).Text)
}

func TestReader_SimplePageField(t *testing.T) {
	doc := readBody(t, `<w:p><w:fldSimple w:instr=" PAGE \* MERGEFORMAT "><w:r><w:t>1</w:t></w:r></w:fldSimple></w:p>`)
	p := onlyParagraph(t, doc)
	assert.Equal(t, model.Inlines{&model.PageNumber{}}, p.Children)
}

func TestReader_Table(t *testing.T) {
	doc := readBody(t, `<w:tbl><w:tblPr/>`+
		`<w:tr><w:tc><w:p><w:r><w:t>A1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B1</w:t></w:r></w:p></w:tc></w:tr>`+
		`<w:tr><w:tc><w:p><w:r><w:t>A2</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B2</w:t></w:r></w:p></w:tc></w:tr>`+
		`</w:tbl>`)
	require.Len(t, doc.Sections, 1)
	require.Len(t, doc.Sections[0].Children, 1)
	tbl, ok := doc.Sections[0].Children[0].(*model.Table)
	require.True(t, ok)
	require.Len(t, tbl.Rows, 2)
	for r, row := range tbl.Rows {
		require.Len(t, row.Cells, 2)
		for c, cell := range row.Cells {
			want := string(rune('A'+c)) + string(rune('1'+r))
			assert.Equal(t, want, cell.PlainText())
		}
	}
}

func TestReader_DeepTableBecomesPlaceholder(t *testing.T) {
	inner := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>deep</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	middle := `<w:tbl><w:tr><w:tc>` + inner + `<w:p/></w:tc></w:tr></w:tbl>`
	outer := `<w:tbl><w:tr><w:tc>` + middle + `<w:p/></w:tc></w:tr></w:tbl>`
	doc := readBody(t, outer)

	top := doc.Sections[0].Children[0].(*model.Table)
	second := top.Rows[0].Cells[0].Content[0].(*model.Table)
	third := second.Rows[0].Cells[0].Content[0].(*model.Table)
	assert.Equal(t, placeholderTable(), third)
	assert.Empty(t, third.Rows[0].Cells[0].PlainText())
}

func TestReader_Sections(t *testing.T) {
	doc := readBody(t,
		para("first")+
			`<w:p><w:pPr><w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr></w:pPr><w:r><w:t>end of one</w:t></w:r></w:p>`+
			para("second")+
			`<w:sectPr><w:pgSz w:w="15840" w:h="12240" w:orient="landscape"/><w:pgMar w:top="720" w:bottom="720" w:left="1080" w:right="1080"/></w:sectPr>`)

	require.Len(t, doc.Sections, 2)
	assert.Len(t, doc.Sections[0].Children, 2)
	assert.Len(t, doc.Sections[1].Children, 1)
	assert.Equal(t, "portrait", orientationOf(doc.Sections[0]))

	props := doc.Sections[1].Properties
	require.NotNil(t, props)
	assert.Equal(t, "landscape", props.Orientation)
	assert.Equal(t, 15840, *props.Width)
	require.NotNil(t, props.Margins)
	assert.Equal(t, 1080, *props.Margins.Left)
	assert.Nil(t, props.Margins.Gutter)
}

func orientationOf(s model.Section) string {
	if s.Properties == nil || s.Properties.Orientation == "" {
		return "portrait"
	}
	return s.Properties.Orientation
}

func TestReader_RejectsNonDocumentRoot(t *testing.T) {
	pkg, err := OpenBytes(buildDocx(t, "", zipEntry{"word/document.xml", `<w:hdr xmlns:w="` + wml.NsW + `"/>`}))
	require.NoError(t, err)
	_, err = NewReader(pkg, "").Read()
	require.Error(t, err)
	assert.True(t, IsFormatError(err))
}

func TestReader_HeadersAndFooters(t *testing.T) {
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + wml.RelHeader + `" Target="header1.xml"/>` +
		`<Relationship Id="rId2" Type="` + wml.RelFooter + `" Target="footer1.xml"/>` +
		`</Relationships>`
	hdr := `<w:hdr xmlns:w="` + wml.NsW + `">` + para("Report") + `</w:hdr>`
	ftr := `<w:ftr xmlns:w="` + wml.NsW + `"><w:p><w:fldSimple w:instr="PAGE"/></w:p></w:ftr>`

	doc := readBody(t,
		para("body")+`<w:sectPr><w:headerReference w:type="default" r:id="rId1"/><w:footerReference w:type="default" r:id="rId2"/></w:sectPr>`,
		zipEntry{"word/_rels/document.xml.rels", rels},
		zipEntry{"word/header1.xml", hdr},
		zipEntry{"word/footer1.xml", ftr},
	)

	require.Len(t, doc.Headers, 1)
	assert.Equal(t, "word/header1.xml", doc.Headers[0].Name)
	assert.Equal(t, "Report", doc.Headers[0].Content[0].PlainText())

	require.Len(t, doc.Footers, 1)
	assert.Equal(t, model.Inlines{&model.PageNumber{}}, doc.Footers[0].Content[0].Children)

	assert.Equal(t, "word/header1.xml", doc.Sections[0].Header)
	assert.Equal(t, "word/footer1.xml", doc.Sections[0].Footer)
}

func imageBody(relID string) string {
	return `<w:p><w:r><w:drawing><wp:inline><wp:extent cx="1905000" cy="952500"/><wp:docPr id="1" name="Picture 1"/>` +
		`<a:graphic><a:graphicData uri="` + wml.NsPic + `"><pic:pic><pic:blipFill><a:blip r:embed="` + relID + `"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>` +
		`</wp:inline></w:drawing></w:r></w:p>`
}

func TestReader_ImagesAreExtracted(t *testing.T) {
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId5" Type="` + wml.RelImage + `" Target="media/image1.png"/></Relationships>`
	src := writeDocx(t, buildDocx(t, imageBody("rId5"),
		zipEntry{"word/_rels/document.xml.rels", rels},
		zipEntry{"word/media/image1.png", string(testPNG)},
	))

	doc, err := Inspect(src)
	require.NoError(t, err)

	p := onlyParagraph(t, doc)
	require.Len(t, p.Children, 1)
	img, ok := p.Children[0].(*model.Image)
	require.True(t, ok)
	assert.Equal(t, 200, img.Width)
	assert.Equal(t, 100, img.Height)
	assert.Equal(t, filepath.Join(MediaDir(src), "image1.png"), img.Path)

	data, err := os.ReadFile(img.Path)
	require.NoError(t, err)
	assert.Equal(t, testPNG, data)
}

func TestReader_DanglingImageIsSkipped(t *testing.T) {
	pkg, err := OpenBytes(buildDocx(t, imageBody("rId42")))
	require.NoError(t, err)
	r := NewReader(pkg, "")
	doc, err := r.Read()
	require.NoError(t, err)

	p := onlyParagraph(t, doc)
	assert.Equal(t, model.Inlines{&model.TextRun{}}, p.Children)
	assert.Len(t, r.Warnings(), 1)
}

func TestReader_AlternateContent(t *testing.T) {
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId5" Type="` + wml.RelImage + `" Target="media/image1.png"/></Relationships>`
	body := `<w:p><w:r><mc:AlternateContent><mc:Choice Requires="wps">` +
		`<w:drawing><wp:inline><wp:extent cx="95250" cy="95250"/><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="rId5"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>` +
		`</mc:Choice><mc:Fallback/></mc:AlternateContent></w:r></w:p>`
	doc := readBody(t, body,
		zipEntry{"word/_rels/document.xml.rels", rels},
		zipEntry{"word/media/image1.png", string(testPNG)},
	)
	img, ok := onlyParagraph(t, doc).Children[0].(*model.Image)
	require.True(t, ok)
	assert.Equal(t, "word/media/image1.png", img.Path)
	assert.Equal(t, 10, img.Width)
}

func TestReader_ReadIsSideEffectFreeOnPackage(t *testing.T) {
	in := writeDocx(t, buildDocx(t, paras("a", "b")))
	pkg, err := Open(in)
	require.NoError(t, err)
	_, err = NewReader(pkg, "").Read()
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, pkg.Save(out))
	assert.Equal(t, readEntries(t, in), readEntries(t, out))
}

func TestReader_DefaultNamespaceDocument(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<document xmlns="` + wml.NsW + `" xmlns:w="` + wml.NsW + `"><body>` +
		`<p><pPr><jc w:val="center"/></pPr><r><rPr><b/></rPr><t>Hi</t></r></p>` +
		`</body></document>`
	p := onlyParagraph(t, readBody(t, "", zipEntry{"word/document.xml", doc}))

	assert.Equal(t, "center", p.Alignment)
	require.Len(t, p.Children, 1)
	assert.Equal(t, &model.TextRun{Text: "Hi", Bold: true}, p.Children[0])
}
