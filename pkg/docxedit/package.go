package docxedit

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// Part is one XML entry of a package, parsed on first access.
type Part struct {
	Name    string
	Doc     *etree.Document
	touched bool
}

// Touched reports whether the part will be re-serialized on save.
func (p *Part) Touched() bool {
	return p.touched
}

// Package is an open DOCX archive. Parts are parsed lazily; parts fetched
// through Part are re-serialized on save, every other entry is copied from
// the source archive byte for byte.
type Package struct {
	source string
	files  map[string]*zip.File
	order  []string

	parts map[string]*Part
	added map[string][]byte
	rels  map[string]*Relationships
}

// Open loads the archive at path. The whole file is read into memory, so the
// package may later be saved over its own source.
func Open(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundErr("open", path)
		}
		return nil, ioErr("open", path, err)
	}

	pkg, err := OpenBytes(content)
	if err != nil {
		var de *DocumentError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	pkg.source = path
	return pkg, nil
}

// ListParts returns the entry names of the archive at path in archive order.
func ListParts(path string) ([]string, error) {
	pkg, err := Open(path)
	if err != nil {
		return nil, err
	}
	return pkg.PartNames(), nil
}

// OpenBytes loads an archive held in memory.
func OpenBytes(content []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, NewDocumentError("open", "", fmt.Errorf("%w: not a valid archive: %v", ErrNotFound, err))
	}

	pkg := New()
	for _, f := range zr.File {
		if _, dup := pkg.files[f.Name]; dup {
			continue
		}
		pkg.files[f.Name] = f
		pkg.order = append(pkg.order, f.Name)
	}
	return pkg, nil
}

// New returns an empty package with no source archive.
func New() *Package {
	return &Package{
		files: make(map[string]*zip.File),
		parts: make(map[string]*Part),
		added: make(map[string][]byte),
		rels:  make(map[string]*Relationships),
	}
}

// Source returns the path the package was opened from, or "".
func (p *Package) Source() string {
	return p.source
}

// Has reports whether an entry exists, in the source or added since.
func (p *Package) Has(name string) bool {
	if _, ok := p.parts[name]; ok {
		return true
	}
	if _, ok := p.added[name]; ok {
		return true
	}
	_, ok := p.files[name]
	return ok
}

// PartNames returns every entry name: source order first, then entries added
// since open in insertion order.
func (p *Package) PartNames() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Part returns the parsed tree of an XML entry, parsing and caching it on the
// first call. The part is marked touched and will be re-serialized on save.
func (p *Package) Part(name string) (*etree.Document, error) {
	part, err := p.part(name)
	if err != nil {
		return nil, err
	}
	part.touched = true
	return part.Doc, nil
}

// ReadPart returns the parsed tree of an XML entry without marking it
// touched. Mutations made through the returned tree are not saved unless the
// part is later fetched with Part.
func (p *Package) ReadPart(name string) (*etree.Document, error) {
	part, err := p.part(name)
	if err != nil {
		return nil, err
	}
	return part.Doc, nil
}

func (p *Package) part(name string) (*Part, error) {
	if part, ok := p.parts[name]; ok {
		return part, nil
	}

	content, err := p.ReadFile(name)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, formatErr("parse part", name, err)
	}
	if doc.Root() == nil {
		return nil, formatErr("parse part", name, errors.New("no root element"))
	}

	GetLogger().Debug("parsed part", "part", name, "bytes", len(content))
	part := &Part{Name: name, Doc: doc}
	p.parts[name] = part
	return part, nil
}

// SetPart installs doc as the tree of name, creating the entry if needed.
// The part is marked touched.
func (p *Package) SetPart(name string, doc *etree.Document) {
	if !p.Has(name) {
		p.order = append(p.order, name)
	}
	delete(p.added, name)
	p.parts[name] = &Part{Name: name, Doc: doc, touched: true}
}

// ReadFile returns the raw bytes of an entry. Entries fetched as parts are
// serialized from their current tree.
func (p *Package) ReadFile(name string) ([]byte, error) {
	if part, ok := p.parts[name]; ok {
		return serializePart(part)
	}
	if data, ok := p.added[name]; ok {
		return data, nil
	}
	f, ok := p.files[name]
	if !ok {
		return nil, notFoundErr("read part", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, formatErr("read part", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, formatErr("read part", name, err)
	}
	return content, nil
}

// AddMedia stores data under the media area as name and returns the target
// path relative to the document part ("media/<name>"). An existing entry of
// the same name is replaced; callers choose unique names. The extension is
// registered in [Content_Types].xml when missing.
func (p *Package) AddMedia(data []byte, name string) (string, error) {
	entry := path.Join(wml.MediaDir, name)
	if !p.Has(entry) {
		p.order = append(p.order, entry)
	}
	p.added[entry] = data

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext != "" {
		if err := p.ensureDefaultContentType(ext, wml.ImageContentType(ext)); err != nil {
			return "", err
		}
	}

	GetLogger().Debug("added media", "entry", entry, "bytes", len(data))
	return path.Join("media", name), nil
}

// Save writes the package to path. The archive is assembled in a temporary
// file beside path and renamed over it once complete.
func (p *Package) Save(dest string) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return ioErr("save", dest, err)
	}
	tmpName := tmp.Name()

	if err := p.SaveTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ioErr("save", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return ioErr("save", dest, err)
	}

	GetLogger().Debug("saved package", "path", dest)
	return nil
}

// SaveTo writes the archive to w.
func (p *Package) SaveTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, name := range p.order {
		if err := p.writeEntry(zw, name); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return ioErr("write archive", "", err)
	}
	return nil
}

func (p *Package) writeEntry(zw *zip.Writer, name string) error {
	if part, ok := p.parts[name]; ok && (part.touched || p.files[name] == nil) {
		content, err := serializePart(part)
		if err != nil {
			return err
		}
		GetLogger().Debug("serialized part", "part", name, "bytes", len(content))
		return writeDeflated(zw, name, content)
	}

	if data, ok := p.added[name]; ok {
		return writeDeflated(zw, name, data)
	}

	f, ok := p.files[name]
	if !ok {
		return formatErr("write archive", name, errors.New("entry has no content"))
	}

	// untouched: copy the compressed stream unchanged
	raw, err := f.OpenRaw()
	if err != nil {
		return formatErr("write archive", name, err)
	}
	fh := f.FileHeader
	dst, err := zw.CreateRaw(&fh)
	if err != nil {
		return ioErr("write archive", name, err)
	}
	if _, err := io.Copy(dst, raw); err != nil {
		return ioErr("write archive", name, err)
	}
	return nil
}

func writeDeflated(zw *zip.Writer, name string, content []byte) error {
	dst, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return ioErr("write archive", name, err)
	}
	if _, err := dst.Write(content); err != nil {
		return ioErr("write archive", name, err)
	}
	return nil
}

func serializePart(part *Part) ([]byte, error) {
	content, err := part.Doc.WriteToBytes()
	if err != nil {
		return nil, formatErr("serialize part", part.Name, err)
	}
	return content, nil
}

// relsPartName maps a part to its relationships part,
// e.g. "word/document.xml" -> "word/_rels/document.xml.rels".
func relsPartName(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target against the part that owns
// the relationship, yielding an archive entry name.
func resolveTarget(partName, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(partName), target))
}
