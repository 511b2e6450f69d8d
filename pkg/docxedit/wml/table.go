package wml

import "github.com/beevik/etree"

// NewTableProperties builds a w:tblPr for a fixed-width table with single
// line borders on the outer edges and the interior grid.
func NewTableProperties(width int) *etree.Element {
	pr := NewW("tblPr")
	w := AddW(pr, "tblW")
	SetInt(w, "w", width)
	SetW(w, "type", "dxa")

	borders := AddW(pr, "tblBorders")
	for _, edge := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b := AddVal(borders, edge, "single")
		SetInt(b, "sz", 4)
		SetInt(b, "space", 0)
		SetW(b, "color", "auto")
	}

	SetW(AddW(pr, "tblLayout"), "type", "fixed")
	return pr
}

// NewTableGrid builds a w:tblGrid of cols equal columns spanning width.
func NewTableGrid(width, cols int) *etree.Element {
	grid := NewW("tblGrid")
	if cols <= 0 {
		return grid
	}
	for i := 0; i < cols; i++ {
		SetInt(AddW(grid, "gridCol"), "w", width/cols)
	}
	return grid
}

// NewCellProperties builds a w:tcPr with a fixed cell width.
func NewCellProperties(width int) *etree.Element {
	pr := NewW("tcPr")
	w := AddW(pr, "tcW")
	SetInt(w, "w", width)
	SetW(w, "type", "dxa")
	return pr
}
