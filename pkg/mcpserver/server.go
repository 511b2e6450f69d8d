// Package mcpserver exposes the docxedit operations as Model Context Protocol
// tools.
//
// Every tool reports failures as a tool result with IsError set and an
// "Error: ..." text, never as a protocol error, so that the calling model sees
// the message.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit"
	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/model"
)

// Name is the implementation name announced to clients.
const Name = "docxedit"

// Version is the implementation version announced to clients.
var Version = "0.1.0"

// New returns a server with every tool registered.
func New() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect_doc_formatting",
		Description: "Reads a .docx file into a JSON block tree (sections, paragraphs, tables, runs, images, page numbers) with headers and footers. Images are extracted to an mcp_media folder beside the file.",
	}, inspectDoc)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_styled_doc",
		Description: "Creates a .docx file from a JSON block tree, with headers, footers, page setup and the built-in Title, Subtitle and Heading1-6 styles.",
		InputSchema: createInputSchema,
	}, createDoc)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "surgical_text_replace",
		Description: "Replaces text in every paragraph whose combined run text contains the search string, even when it spans several runs. The result is written into the paragraph's first run.",
	}, replaceText)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "surgical_insert_paragraph",
		Description: "Inserts a new paragraph next to a template paragraph, copying the template's paragraph properties verbatim.",
	}, insertParagraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "surgical_add_image",
		Description: "Appends an inline image to a paragraph of an existing .docx file without rewriting the rest of the document.",
	}, addImage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cleanup_media",
		Description: "Deletes the temporary mcp_media folder to save space.",
	}, cleanupMedia)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_parts",
		Description: "Lists the entries of a .docx package in archive order.",
	}, listParts)

	return server
}

// Run serves the tools over stdin/stdout until ctx is done or the client
// disconnects.
func Run(ctx context.Context) error {
	docxedit.GetLogger().Info("serving MCP over stdio", "version", Version)
	return New().Run(ctx, &mcp.StdioTransport{})
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func errorResult(tool string, err error) *mcp.CallToolResult {
	docxedit.WithField("tool", tool).Warn("tool failed", "err", err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
	}
}

// InspectInput are the arguments of inspect_doc_formatting.
type InspectInput struct {
	Path string `json:"path" jsonschema:"absolute path to the .docx file"`
}

func inspectDoc(ctx context.Context, req *mcp.CallToolRequest, in InspectInput) (*mcp.CallToolResult, any, error) {
	doc, err := docxedit.Inspect(in.Path)
	if err != nil {
		return errorResult("inspect_doc_formatting", err), nil, nil
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errorResult("inspect_doc_formatting", err), nil, nil
	}
	return textResult("%s", out), nil, nil
}

// CreateInput are the arguments of create_styled_doc.
type CreateInput struct {
	Path     string               `json:"path" jsonschema:"where to write the new .docx file"`
	Headers  []model.HeaderFooter `json:"headers,omitempty" jsonschema:"named header definitions"`
	Footers  []model.HeaderFooter `json:"footers,omitempty" jsonschema:"named footer definitions; a footer holding a page_number is preferred"`
	Sections []model.Section      `json:"sections" jsonschema:"document sections in order"`
}

// createInputSchema leaves block shapes to the tagged decoders in package
// model; an inferred schema would reject the "type" discriminators.
var createInputSchema = map[string]any{
	"type":     "object",
	"required": []string{"path", "sections"},
	"properties": map[string]any{
		"path": map[string]any{"type": "string", "description": "where to write the new .docx file"},
		"headers": map[string]any{
			"type":        "array",
			"description": "named header definitions: {name, content: paragraph[]}",
			"items":       map[string]any{"type": "object"},
		},
		"footers": map[string]any{
			"type":        "array",
			"description": "named footer definitions; a footer holding a page_number is preferred",
			"items":       map[string]any{"type": "object"},
		},
		"sections": map[string]any{
			"type":        "array",
			"description": "document sections in order: {properties?, header?, footer?, children: block[]}",
			"items":       map[string]any{"type": "object"},
		},
	},
}

func createDoc(ctx context.Context, req *mcp.CallToolRequest, in CreateInput) (*mcp.CallToolResult, any, error) {
	w := docxedit.NewWriter()
	pkg, err := w.Write(&model.Document{
		Headers:  in.Headers,
		Footers:  in.Footers,
		Sections: in.Sections,
	})
	if err != nil {
		return errorResult("create_styled_doc", err), nil, nil
	}
	if err := pkg.Save(in.Path); err != nil {
		return errorResult("create_styled_doc", err), nil, nil
	}

	msg := "Success: " + in.Path
	if warnings := w.Warnings(); len(warnings) > 0 {
		lines := make([]string, 0, len(warnings))
		for _, warn := range warnings {
			lines = append(lines, "skipped: "+warn.Error())
		}
		msg += "\n" + strings.Join(lines, "\n")
	}
	return textResult("%s", msg), nil, nil
}

// ReplaceInput are the arguments of surgical_text_replace.
type ReplaceInput struct {
	InputPath  string `json:"inputPath" jsonschema:"source .docx file"`
	OutputPath string `json:"outputPath" jsonschema:"destination .docx file, may equal inputPath"`
	Search     string `json:"search" jsonschema:"text to find; also used as a regular expression for the replacement"`
	Replace    string `json:"replace" jsonschema:"replacement text"`
	Part       string `json:"part,omitempty" jsonschema:"limit the replacement to one part such as word/document.xml; all text parts by default"`
}

func replaceText(ctx context.Context, req *mcp.CallToolRequest, in ReplaceInput) (*mcp.CallToolResult, any, error) {
	var parts []string
	if in.Part != "" {
		parts = append(parts, in.Part)
	}
	n, err := docxedit.ReplaceTextFile(in.InputPath, in.OutputPath, in.Search, in.Replace, parts...)
	if err != nil {
		return errorResult("surgical_text_replace", err), nil, nil
	}
	return textResult("Surgically updated %d paragraphs.", n), nil, nil
}

// InsertInput are the arguments of surgical_insert_paragraph.
type InsertInput struct {
	InputPath              string `json:"inputPath" jsonschema:"source .docx file"`
	OutputPath             string `json:"outputPath" jsonschema:"destination .docx file, may equal inputPath"`
	TemplateParagraphIndex int    `json:"templateParagraphIndex" jsonschema:"index of the paragraph to clone styles from"`
	Text                   string `json:"text" jsonschema:"text content for the new paragraph"`
	InsertAfter            *bool  `json:"insertAfter,omitempty" jsonschema:"if true (the default) inserts after the template; otherwise before"`
}

func insertParagraph(ctx context.Context, req *mcp.CallToolRequest, in InsertInput) (*mcp.CallToolResult, any, error) {
	after := in.InsertAfter == nil || *in.InsertAfter
	idx, err := docxedit.InsertParagraphFile(in.InputPath, in.OutputPath, in.TemplateParagraphIndex, in.Text, after)
	if err != nil {
		return errorResult("surgical_insert_paragraph", err), nil, nil
	}
	return textResult("Success! Paragraph inserted at index %d", idx), nil, nil
}

// AddImageInput are the arguments of surgical_add_image.
type AddImageInput struct {
	InputPath            string `json:"inputPath" jsonschema:"source .docx file"`
	OutputPath           string `json:"outputPath" jsonschema:"destination .docx file, may equal inputPath"`
	ImagePath            string `json:"imagePath" jsonschema:"image file to embed"`
	TargetParagraphIndex int    `json:"targetParagraphIndex,omitempty" jsonschema:"index of the paragraph to append the image to"`
	Width                int    `json:"width,omitempty" jsonschema:"width in pixels; taken from the image when omitted"`
	Height               int    `json:"height,omitempty" jsonschema:"height in pixels; taken from the image when omitted"`
}

func addImage(ctx context.Context, req *mcp.CallToolRequest, in AddImageInput) (*mcp.CallToolResult, any, error) {
	relID, err := docxedit.InjectImageFile(in.InputPath, in.OutputPath, in.ImagePath, in.TargetParagraphIndex, in.Width, in.Height)
	if err != nil {
		return errorResult("surgical_add_image", err), nil, nil
	}
	return textResult("Image injected with rId: %s. File saved to %s", relID, in.OutputPath), nil, nil
}

// CleanupInput are the arguments of cleanup_media.
type CleanupInput struct {
	Directory string `json:"directory" jsonschema:"the directory containing the mcp_media folder"`
}

func cleanupMedia(ctx context.Context, req *mcp.CallToolRequest, in CleanupInput) (*mcp.CallToolResult, any, error) {
	existed, err := docxedit.CleanupMedia(in.Directory)
	if err != nil {
		return errorResult("cleanup_media", err), nil, nil
	}
	if !existed {
		return textResult("No media folder found."), nil, nil
	}
	return textResult("Media folder cleaned up successfully."), nil, nil
}

// ListPartsInput are the arguments of list_parts.
type ListPartsInput struct {
	Path string `json:"path" jsonschema:"the .docx file to list"`
}

func listParts(ctx context.Context, req *mcp.CallToolRequest, in ListPartsInput) (*mcp.CallToolResult, any, error) {
	names, err := docxedit.ListParts(in.Path)
	if err != nil {
		return errorResult("list_parts", err), nil, nil
	}
	return textResult("%s", strings.Join(names, "\n")), nil, nil
}
