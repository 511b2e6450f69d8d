package wml

// Namespace URIs.
const (
	NsW    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NsWP   = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NsPic  = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	NsV    = "urn:schemas-microsoft-com:vml"
	NsRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	NsCT   = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// prefixes maps namespace URIs to the prefixes Word itself writes.
var prefixes = map[string]string{
	NsW:   "w",
	NsR:   "r",
	NsWP:  "wp",
	NsA:   "a",
	NsPic: "pic",
	NsV:   "v",
}

// Prefix returns the canonical prefix for a namespace URI, or "" if unknown.
func Prefix(ns string) string {
	return prefixes[ns]
}

// Relationship types.
const (
	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RelFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RelStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Content types.
const (
	CTRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	CTXML           = "application/xml"
	CTDocument      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	CTStyles        = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	CTHeader        = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	CTFooter        = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
)

// Well-known part names.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
	PartDocument     = "word/document.xml"
	PartStyles       = "word/styles.xml"
	MediaDir         = "word/media"
)

// ImageContentType returns the content type for an image file extension
// (without the dot). Unknown extensions map to application/octet-stream.
func ImageContentType(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	case "emf":
		return "image/x-emf"
	case "wmf":
		return "image/x-wmf"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
