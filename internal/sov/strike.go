package sov

import (
	"regexp"
	"strconv"

	"github.com/sovtools/sovgen/internal/pdfpage"
)

var firstIntRe = regexp.MustCompile(`\d+`)

// deletedIndices recovers the page's struck-out item numbers. Deleted BOM
// lines are marked by red geometry near the item-index column rather
// than by any machine-readable flag; for every red segment or text mark
// in the left gutter, a thin horizontal strip around its vertical span is
// re-read and the first integer of that strip's text is the flagged item
// number.
func deletedIndices(p *pdfpage.Page) map[int]bool {
	deleted := make(map[int]bool)

	flag := func(bbox pdfpage.Rect) {
		strip := pdfpage.Rect{
			X0: 0,
			Y0: bbox.Y0 - stripPadBelow,
			X1: gutterMaxX,
			Y1: bbox.Y1 + stripPadAbove,
		}
		m := firstIntRe.FindString(p.CropText(strip))
		if m == "" {
			return
		}
		if n, err := strconv.Atoi(m); err == nil {
			deleted[n] = true
		}
	}

	for _, seg := range p.Segments {
		if seg.Stroke.Equals(pdfpage.Red) && seg.BBox.X0 < gutterMaxX {
			flag(seg.BBox)
		}
	}
	for _, mark := range p.Marks {
		if mark.Fill.Equals(pdfpage.Red) && mark.BBox.X0 < gutterMaxX {
			flag(mark.BBox)
		}
	}

	return deleted
}
