package sov

import "strings"

// columnMap assigns table column indices to roles. -1 marks an absent
// role.
type columnMap struct {
	partNumber int
	drawingNo  int
	partName   int
	quantity   int
	note       int
	change     int
}

// locateTable finds the header row of a table grid and maps column roles
// from the header cell wording. Scanning covers only the first
// headerScanRows rows; when nothing matches, a fixed fallback row is
// assumed rather than treating the page as an error. In strict mode the
// header must also name a quantity column.
func locateTable(grid [][]string, strict bool) (columnMap, int) {
	headerRow := fallbackHeaderRow
	limit := len(grid)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		hasLevel, hasPartNumber, hasQty := false, false, false
		for _, cell := range grid[i] {
			txt := strings.ToLower(cleanCell(cell))
			if strings.HasPrefix(txt, "level") {
				hasLevel = true
			}
			if strings.Contains(txt, "part number") {
				hasPartNumber = true
			}
			if strings.Contains(txt, "qty") {
				hasQty = true
			}
		}
		if hasLevel && hasPartNumber && (!strict || hasQty) {
			headerRow = i
			break
		}
	}

	cmap := columnMap{
		partNumber: -1,
		drawingNo:  -1,
		partName:   -1,
		quantity:   -1,
		note:       -1,
		change:     -1,
	}

	if headerRow < len(grid) {
		for ci, cell := range grid[headerRow] {
			txt := strings.ToLower(cleanCell(cell))
			switch {
			case strings.Contains(txt, "part number"):
				if cmap.partNumber < 0 {
					cmap.partNumber = ci
				}
			case isDrawingHeader(txt):
				if cmap.drawingNo < 0 {
					cmap.drawingNo = ci
				}
			case strings.Contains(txt, "part name"):
				if cmap.partName < 0 {
					cmap.partName = ci
				}
			case strings.Contains(txt, "qty"):
				if cmap.quantity < 0 {
					cmap.quantity = ci
				}
			case strings.Contains(txt, "change") || strings.HasPrefix(txt, "rev"):
				if cmap.change < 0 {
					cmap.change = ci
				}
			case strings.Contains(txt, "note") || strings.Contains(txt, "備"):
				if cmap.note < 0 {
					cmap.note = ci
				}
			}
		}
	}

	if cmap.partNumber < 0 {
		cmap.partNumber = fallbackPartNumberCol
	}
	if cmap.drawingNo < 0 {
		cmap.drawingNo = fallbackDrawingNoCol
	}
	if cmap.partName < 0 {
		cmap.partName = fallbackPartNameCol
	}
	if cmap.quantity < 0 {
		cmap.quantity = fallbackQuantityCol
	}
	if cmap.note < 0 {
		cmap.note = fallbackNoteCol
	}
	// change has no conventional position; it stays absent when unmatched

	return cmap, headerRow
}

// isDrawingHeader matches the drawing-number header variants while
// excluding the unrelated "product number" column.
func isDrawingHeader(txt string) bool {
	if strings.Contains(txt, "product number") {
		return false
	}
	return strings.Contains(txt, "draw.no") ||
		strings.Contains(txt, "draw no") ||
		strings.Contains(txt, "draw.")
}

// cleanCell flattens a cell to single-line trimmed text.
func cleanCell(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}
