package pdfpage

import (
	"sort"
)

// minRules is the minimum number of parallel rules in each direction
// required before the page is considered to carry a table.
const minRules = 2

// buildGrid recovers the ruled table on a page from its drawn segments
// using the lines strategy: cluster the horizontal and vertical rule
// positions, form the cell matrix, and pour the page's words into the
// cells. Returns nil when the page has no usable ruling.
func buildGrid(segments []Segment, words []Word) [][]string {
	var hPos, vPos []float64
	for _, seg := range segments {
		b := seg.BBox
		switch {
		case b.Y1-b.Y0 < snapTolerance && b.X1-b.X0 > snapTolerance:
			hPos = append(hPos, (b.Y0+b.Y1)/2)
		case b.X1-b.X0 < snapTolerance && b.Y1-b.Y0 > snapTolerance:
			vPos = append(vPos, (b.X0+b.X1)/2)
		}
	}

	rows := clusterPositions(hPos)
	cols := clusterPositions(vPos)
	if len(rows) < minRules || len(cols) < minRules {
		return nil
	}

	// rows top to bottom (descending y), columns left to right
	sort.Sort(sort.Reverse(sort.Float64Slice(rows)))
	sort.Float64s(cols)

	grid := make([][]string, len(rows)-1)
	cells := make([][][]Word, len(rows)-1)
	for i := range grid {
		grid[i] = make([]string, len(cols)-1)
		cells[i] = make([][]Word, len(cols)-1)
	}

	for _, w := range words {
		cx := (w.BBox.X0 + w.BBox.X1) / 2
		cy := (w.BBox.Y0 + w.BBox.Y1) / 2
		ri := findInterval(rows, cy, true)
		ci := findInterval(cols, cx, false)
		if ri < 0 || ci < 0 {
			continue
		}
		cells[ri][ci] = append(cells[ri][ci], w)
	}

	for i := range cells {
		for j := range cells[i] {
			grid[i][j] = joinWords(cells[i][j])
		}
	}
	return grid
}

// clusterPositions merges rule positions closer than the snap tolerance,
// returning one representative per cluster.
func clusterPositions(pos []float64) []float64 {
	if len(pos) == 0 {
		return nil
	}
	sorted := make([]float64, len(pos))
	copy(sorted, pos)
	sort.Float64s(sorted)

	var out []float64
	start := sorted[0]
	sum, n := sorted[0], 1.0
	for _, p := range sorted[1:] {
		if p-start > snapTolerance {
			out = append(out, sum/n)
			start, sum, n = p, p, 1
			continue
		}
		sum += p
		n++
	}
	out = append(out, sum/n)
	return out
}

// findInterval locates which band of the sorted rule positions contains v.
// For row bands the positions descend (top of page first).
func findInterval(bounds []float64, v float64, descending bool) int {
	for i := 0; i < len(bounds)-1; i++ {
		lo, hi := bounds[i], bounds[i+1]
		if descending {
			lo, hi = hi, lo
		}
		if v >= lo && v < hi {
			return i
		}
	}
	return -1
}
