// Package pdfpage supplies the page-level extraction primitives the BOM
// pipeline consumes: positioned words, drawn line/curve segments with
// stroke color, text marks with fill color, the page's plain text, and the
// first ruled table grid recovered from the page geometry.
package pdfpage

import "math"

const (
	// colorEpsilon is the tolerance for color comparisons. Renderers do
	// not always emit exact 1.0/0.0 component values.
	colorEpsilon = 0.02

	// lineTolerance is the vertical distance within which two words are
	// considered part of the same text line.
	lineTolerance = 3.0

	// snapTolerance is the distance within which rule positions are
	// merged when recovering a table grid.
	snapTolerance = 3.0
)

// Color is an RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Red is the sentinel color used for strike-through markings in SOV
// documents.
var Red = Color{R: 1, G: 0, B: 0}

// Equals reports whether two colors match within the comparison epsilon.
func (c Color) Equals(o Color) bool {
	return math.Abs(c.R-o.R) < colorEpsilon &&
		math.Abs(c.G-o.G) < colorEpsilon &&
		math.Abs(c.B-o.B) < colorEpsilon
}

// Rect is an axis-aligned rectangle in PDF user space (y grows upward).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// SegmentKind distinguishes the path construction operator a segment came
// from.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentCurve
	SegmentRectEdge
)

// Segment is a stroked path element with its stroking color.
type Segment struct {
	Kind   SegmentKind
	BBox   Rect
	Stroke Color
}

// Mark is a text-showing run with its non-stroking (fill) color. The text
// content is approximate; marks exist for color/position inspection, not
// for reading.
type Mark struct {
	Text string
	BBox Rect
	Fill Color
}

// Word is a positioned run of extracted text.
type Word struct {
	Text string
	BBox Rect
}

// Page holds everything extracted from one PDF page.
type Page struct {
	Number   int
	Width    float64
	Height   float64
	Text     string
	Words    []Word
	Segments []Segment
	Marks    []Mark

	// Grid is the first ruled table recovered from the page, or nil when
	// the page has no detectable table.
	Grid [][]string
}

// CropText re-extracts the text of the page region r, reading words in
// line order left to right.
func (p *Page) CropText(r Rect) string {
	var hits []Word
	for _, w := range p.Words {
		if w.BBox.Intersects(r) {
			hits = append(hits, w)
		}
	}
	return joinWords(hits)
}
