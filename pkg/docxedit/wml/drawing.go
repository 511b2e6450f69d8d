package wml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Picture describes an inline picture to be placed in a run.
type Picture struct {
	RelID  string // relationship id of the image target
	ID     int    // drawing object id, unique within the part
	Name   string // media file name, shown as the picture name
	Width  int    // pixels
	Height int    // pixels
}

// NewPictureRun builds <w:r><w:drawing><wp:inline>...</wp:inline></w:drawing></w:r>
// referencing p.RelID, with extents converted from pixels to EMU.
func NewPictureRun(p Picture) *etree.Element {
	cx := strconv.FormatInt(PixelsToEMU(p.Width), 10)
	cy := strconv.FormatInt(PixelsToEMU(p.Height), 10)
	id := strconv.Itoa(p.ID)

	run := NewW("r")
	inline := AddW(run, "drawing").CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}

	ext := inline.CreateElement("wp:extent")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)

	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", "Picture "+id)

	locks := inline.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks")
	locks.CreateAttr("xmlns:a", NsA)
	locks.CreateAttr("noChangeAspect", "1")

	graphic := inline.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", NsA)
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", NsPic)

	pic := data.CreateElement("pic:pic")
	pic.CreateAttr("xmlns:pic", NsPic)
	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", p.Name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", p.RelID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	aext := xfrm.CreateElement("a:ext")
	aext.CreateAttr("cx", cx)
	aext.CreateAttr("cy", cy)
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	return run
}

// PictureRelID returns the relationship id an image run child (w:drawing or
// w:pict) points at: a:blip/@r:embed for DrawingML, v:imagedata/@r:id for VML.
func PictureRelID(e *etree.Element) (string, bool) {
	if blip := Find(e, NsA, "blip"); blip != nil {
		if id, ok := Attr(blip, NsR, "embed"); ok {
			return id, true
		}
	}
	if img := Find(e, NsV, "imagedata"); img != nil {
		if id, ok := Attr(img, NsR, "id"); ok {
			return id, true
		}
	}
	return "", false
}

// PictureExtent returns the wp:extent of a drawing in EMU.
func PictureExtent(e *etree.Element) (cx, cy int64, ok bool) {
	ext := Find(e, NsWP, "extent")
	if ext == nil {
		return 0, 0, false
	}
	x, xok := Attr(ext, "", "cx")
	y, yok := Attr(ext, "", "cy")
	if !xok || !yok {
		return 0, 0, false
	}
	var err error
	if cx, err = strconv.ParseInt(x, 10, 64); err != nil {
		return 0, 0, false
	}
	if cy, err = strconv.ParseInt(y, 10, 64); err != nil {
		return 0, 0, false
	}
	return cx, cy, true
}

// IsPageInstruction reports whether a field instruction is a PAGE field.
// Only the field name token counts, so NUMPAGES does not match.
func IsPageInstruction(instr string) bool {
	for _, tok := range strings.Fields(instr) {
		if tok == "PAGE" {
			return true
		}
	}
	return false
}

// NewPageNumberRuns returns the run sequence of a complex PAGE field:
// begin, instruction, separate, cached result, end.
func NewPageNumberRuns() []*etree.Element {
	fldChar := func(kind string) *etree.Element {
		r := NewW("r")
		AddW(r, "fldChar").CreateAttr("w:fldCharType", kind)
		return r
	}

	instr := NewW("r")
	it := AddW(instr, "instrText")
	it.CreateAttr("xml:space", "preserve")
	it.SetText(" PAGE ")

	result := NewW("r")
	AddText(result, "1")

	return []*etree.Element{fldChar("begin"), instr, fldChar("separate"), result, fldChar("end")}
}
