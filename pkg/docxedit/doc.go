// Package docxedit reads, creates and surgically edits Microsoft Word
// documents (DOCX).
//
// A DOCX file is a ZIP archive of XML parts tied together by relationship
// files and a content-type registry. docxedit works on that package
// directly: parts are parsed lazily into element trees, and on save only the
// parts that were fetched for mutation are re-serialized. Every other entry,
// including media, is copied from the source archive byte for byte.
//
// # Reading
//
// Inspect converts a document into a compact block tree (see package model):
// sections, paragraphs, tables, text runs, images and page numbers.
//
//	doc, err := docxedit.Inspect("report.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := json.MarshalIndent(doc, "", "  ")
//	fmt.Println(string(out))
//
// Images are copied into a scratch directory beside the document (see
// MediaDir and CleanupMedia).
//
// # Creating
//
// Create builds a new archive from a block tree, with a built-in style sheet
// (Normal, Title, Subtitle, Heading1-6):
//
//	err := docxedit.Create("out.docx", &model.Document{
//	    Sections: []model.Section{{
//	        Children: model.Blocks{&model.Paragraph{Heading: "Heading1", Text: "Hello"}},
//	    }},
//	})
//
// # Surgical edits
//
// Editor mutates an existing package in place, leaving everything it does
// not touch intact:
//
//	pkg, _ := docxedit.Open("in.docx")
//	ed := docxedit.NewEditor(pkg)
//	ed.SubstituteText("{{name}}", "Jane")
//	ed.CloneAndInsertParagraph(3, "Inserted", true)
//	ed.Save("out.docx")
//
// Paragraph indexes count every paragraph of the main document body in
// document order, including those inside tables.
//
// # Errors
//
// Failures wrap one of ErrNotFound, ErrFormat, ErrIndexOutOfRange or ErrIO;
// test them with errors.Is or the IsNotFound, IsFormatError and
// IsIndexOutOfRange helpers.
//
// # Configuration
//
// Logging level, scratch directory name and default image sizes come from
// Config, loaded from the environment (DOCXEDIT_*) or a YAML file.
package docxedit
