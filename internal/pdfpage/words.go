package pdfpage

import (
	"sort"
	"strings"
)

// textChunk is one positioned show-text fragment as reported by the PDF
// text extractor. Fragments are frequently single glyphs; buildWords
// reassembles them.
type textChunk struct {
	x, y, w, size float64
	s             string
}

// buildWords groups raw text fragments into words. Fragments sharing a
// baseline are merged while the horizontal gap between them stays below a
// fraction of the font size; larger gaps start a new word.
func buildWords(chunks []textChunk) []Word {
	if len(chunks) == 0 {
		return nil
	}

	sorted := make([]textChunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		if diff := sorted[i].y - sorted[j].y; diff > lineTolerance || diff < -lineTolerance {
			return sorted[i].y > sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var words []Word
	var cur strings.Builder
	var bbox Rect
	var lastEnd, lastY, lastSize float64
	open := false

	flush := func() {
		if !open {
			return
		}
		text := cur.String()
		if strings.TrimSpace(text) != "" {
			words = append(words, Word{Text: text, BBox: bbox})
		}
		cur.Reset()
		open = false
	}

	for _, c := range sorted {
		if c.s == "" {
			continue
		}
		height := c.size
		if height <= 0 {
			height = 10
		}
		sameLine := open && c.y-lastY < lineTolerance && lastY-c.y < lineTolerance
		gap := c.x - lastEnd
		maxGap := 0.3 * lastSize
		if maxGap <= 0 {
			maxGap = 1.0
		}
		if sameLine && gap <= maxGap && gap > -maxGap {
			cur.WriteString(c.s)
			if c.x+c.w > bbox.X1 {
				bbox.X1 = c.x + c.w
			}
			if c.y+height > bbox.Y1 {
				bbox.Y1 = c.y + height
			}
		} else {
			flush()
			cur.WriteString(c.s)
			bbox = Rect{X0: c.x, Y0: c.y, X1: c.x + c.w, Y1: c.y + height}
			open = true
		}
		lastEnd = c.x + c.w
		lastY = c.y
		lastSize = c.size
	}
	flush()

	return words
}

// joinWords renders a set of words as text, left to right within a line
// and top to bottom across lines.
func joinWords(words []Word) string {
	if len(words) == 0 {
		return ""
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if diff := sorted[i].BBox.Y0 - sorted[j].BBox.Y0; diff > lineTolerance || diff < -lineTolerance {
			return sorted[i].BBox.Y0 > sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var sb strings.Builder
	lineY := sorted[0].BBox.Y0
	for i, w := range sorted {
		if i > 0 {
			if lineY-w.BBox.Y0 > lineTolerance {
				sb.WriteByte('\n')
				lineY = w.BBox.Y0
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.Text)
	}
	return sb.String()
}
