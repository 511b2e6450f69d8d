package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(docxedit.ResetGlobalConfig)

	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

const helloDoc = `{"sections": [{"children": [
	{"type": "paragraph", "children": [{"type": "text_run", "text": "Hello NAME"}]},
	{"type": "paragraph", "children": [{"type": "text_run", "text": "Second"}]}
]}]}`

func TestCreateInspectReplace(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "a.docx")

	out, err := execute(t, helloDoc, "create", doc)
	require.NoError(t, err)
	assert.Equal(t, "Success: "+doc+"\n", out)

	out, err = execute(t, "", "replace", doc, "NAME", "World")
	require.NoError(t, err)
	assert.Equal(t, "Surgically updated 1 paragraphs.\n", out)

	out, err = execute(t, "", "inspect", "--compact", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `"text":"Hello World"`)
}

func TestCreateFromInputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(input, []byte(helloDoc), 0o644))
	doc := filepath.Join(dir, "b.docx")

	_, err := execute(t, "", "create", "-i", input, doc)
	require.NoError(t, err)
	assert.FileExists(t, doc)

	_, err = execute(t, "not json", "create", filepath.Join(dir, "c.docx"))
	assert.ErrorContains(t, err, "decode document")
}

func TestInsertWithOutput(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.docx")
	dst := filepath.Join(dir, "out.docx")
	_, err := execute(t, helloDoc, "create", doc)
	require.NoError(t, err)

	out, err := execute(t, "", "insert", "-o", dst, doc, "1", "Third")
	require.NoError(t, err)
	assert.Equal(t, "Success! Paragraph inserted at index 2\n", out)
	assert.FileExists(t, dst)

	out, err = execute(t, "", "insert", "--before", doc, "0", "Zero")
	require.NoError(t, err)
	assert.Equal(t, "Success! Paragraph inserted at index 0\n", out)

	_, err = execute(t, "", "insert", doc, "x", "bad")
	assert.ErrorContains(t, err, "invalid template index")

	_, err = execute(t, "", "insert", doc, "10", "bad")
	assert.True(t, docxedit.IsIndexOutOfRange(err))
}

func TestPartsAndCleanup(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.docx")
	_, err := execute(t, helloDoc, "create", doc)
	require.NoError(t, err)

	out, err := execute(t, "", "parts", doc)
	require.NoError(t, err)
	assert.Contains(t, strings.Split(out, "\n"), "word/document.xml")

	out, err = execute(t, "", "cleanup", dir)
	require.NoError(t, err)
	assert.Equal(t, "No media folder found.\n", out)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log_level: loud\n"), 0o644))

	_, err := execute(t, "", "--config", bad, "version")
	assert.ErrorContains(t, err, "invalid log level")

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("media_dir: scratch\n"), 0o644))
	out, err := execute(t, "", "--config", good, "version")
	require.NoError(t, err)
	assert.Equal(t, "docxedit version "+version+"\n", out)
}
