// Package sheet renders the reconciled multi-variant part list into the
// "Combined" workbook layout used downstream.
package sheet

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/sovtools/sovgen/internal/sov"
)

const sheetName = "Combined"

// Fixed geometry of the Combined layout. Rows and columns are
// zero-based here; helpers translate to spreadsheet coordinates.
const (
	smallWidth    = 4.36
	totalWidth    = 21.18 // fixed width for the Part-Type area
	partNameWidth = 43.55
	qtyColWidth   = 13.91
	dataRowHeight = 32.3
	startRow      = 14 // first header row; data starts one below

	canvasRows = 500
	canvasCols = 50
)

var blankWidths = []float64{4.22, 16.67, 43.47, 18.22, 17.78, 6.78, 13.78, 13.78, 13.78}

var blankHeights = []float64{
	82.5, 16.5, 60.8, 16.2, 16.5, 16.5, 25.5, 16.5, 19.2,
	361.5, 33.0, 171.8, 97.1, 81.8,
}

// titleBlockLabels name the vertical metadata boxes above the quantity
// columns, one row each.
var titleBlockLabels = []string{
	"Yazaki Assy Drawing Number", "Yazaki Assy Drawing Rev",
	"Yazaki MTS Part Number", "Yazaki MTS Rev",
	"Yazaki S-Characteristics Drawing Number", "Yazaki S-Characteristics Drawing Rev",
	"Customer Drawing Number", "Customer Drawing Rev",
	"Vehicle Code", "Customer Part Description",
	"Model Year", "Manufacturing Plant",
	"Customer Part Number", "Yazaki Assembly Number",
}

// Renderer writes combined workbooks.
type Renderer struct {
	log zerolog.Logger
}

// NewRenderer creates a workbook renderer.
func NewRenderer(log zerolog.Logger) *Renderer {
	return &Renderer{log: log}
}

// Render writes the merged part list to an xlsx workbook at outPath, one
// quantity column per variant in input order.
func (rd *Renderer) Render(variants []sov.VariantRecord, parts []sov.MergedPart, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("register styles: %w", err)
	}

	maxLvl := sov.MaxLevel(parts)
	pnCol := maxLvl
	groupSt := pnCol + 1
	qtySt := groupSt + 3

	w := &writer{f: f}

	// Grey canvas behind the laid-out region.
	w.style(0, 0, canvasCols-1, canvasRows-1, st.grey)

	for i, h := range blankHeights {
		w.rowHeight(i, h)
	}

	// Indent columns share the fixed Part-Type width.
	for i := 0; i < maxLvl; i++ {
		width := smallWidth
		if i == maxLvl-1 {
			width = totalWidth - smallWidth*float64(maxLvl-1)
		}
		w.colWidth(i, width)
	}
	w.colWidth(pnCol, partNameWidth)
	for j, width := range blankWidths[3:6] {
		w.colWidth(groupSt+j, width)
	}
	for vi := range variants {
		w.colWidth(qtySt+vi, qtyColWidth)
	}

	w.merge(0, 0, pnCol, startRow-1, "Spreadsheet of Variants", st.title)

	// Bordered metadata boxes above the quantity columns.
	for r := 0; r < 9; r++ {
		if len(variants) > 1 {
			w.merge(qtySt, r, qtySt+len(variants)-1, r, "", st.merge)
		} else {
			w.set(qtySt, r, "", st.merge)
		}
	}
	for r := 9; r < startRow; r++ {
		for vi := range variants {
			w.set(qtySt+vi, r, "", st.vert)
		}
	}

	for i, txt := range titleBlockLabels {
		w.merge(groupSt, i, groupSt+2, i, txt, st.merge)
	}

	for vi, v := range variants {
		w.set(qtySt+vi, 12, v.CustomerID, st.vert)
		w.set(qtySt+vi, 13, v.ProductID, st.vert)
	}

	// Column header row.
	w.merge(0, startRow, pnCol-1, startRow, "Part Type", st.merge)
	w.set(pnCol, startRow, "Part Name", st.merge)
	w.set(groupSt, startRow, "Part Number", st.merge)
	w.set(groupSt+1, startRow, "Drawing Number", st.merge)
	w.set(groupSt+2, startRow, "Rev.", st.merge)
	for vi := range variants {
		w.set(qtySt+vi, startRow, "", st.merge)
	}

	for idx := range parts {
		p := &parts[idx]
		r := startRow + 1 + idx

		sc := p.Level - 1
		for c := 0; c < sc; c++ {
			w.set(c, r, "", st.blank)
		}
		ec := pnCol - 1

		ptStyle := st.merge
		switch {
		case p.FlagMultilineEnglish && p.Level > 1:
			ptStyle = st.hlMultilineLeft
		case p.FlagMultilineEnglish:
			ptStyle = st.hlMultilineCenter
		case p.Level > 1:
			ptStyle = st.left
		}

		// Part-Type area always shows the canonical name.
		if sc < ec {
			w.merge(sc, r, ec, r, p.PartName, ptStyle)
		} else {
			w.set(sc, r, p.PartName, ptStyle)
		}

		visible := p.DisplayName
		if visible == "" {
			visible = p.PartName
		}
		nameStyle := st.merge
		switch {
		case p.FlagMultilineEnglish && p.FlagNoteUsed:
			nameStyle = st.hlBoth
		case p.FlagNoteUsed:
			nameStyle = st.hlNote
		case p.FlagMultilineEnglish:
			nameStyle = st.hlMultilineCenter
		}
		w.set(pnCol, r, visible, nameStyle)

		w.set(groupSt, r, p.PartNumber, st.merge)
		w.set(groupSt+1, r, p.DrawingNo, st.merge)
		w.set(groupSt+2, r, "D"+p.Revision, st.rev)

		for vi, q := range p.Quantities {
			if q == nil || *q == 0 {
				w.set(qtySt+vi, r, "", st.merge)
			} else {
				w.set(qtySt+vi, r, *q, st.merge)
			}
		}
	}

	for r := startRow; r <= startRow+len(parts); r++ {
		w.rowHeight(r, dataRowHeight)
	}

	if w.err != nil {
		return fmt.Errorf("build workbook: %w", w.err)
	}
	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	rd.log.Info().Str("path", outPath).Int("rows", len(parts)).Msg("wrote combined workbook")
	return nil
}

// writer accumulates the first error across the many cell operations so
// the layout code stays readable.
type writer struct {
	f   *excelize.File
	err error
}

func (w *writer) keep(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

func (w *writer) set(col, row int, v interface{}, style int) {
	ref := cellName(col, row)
	w.keep(w.f.SetCellValue(sheetName, ref, v))
	w.keep(w.f.SetCellStyle(sheetName, ref, ref, style))
}

func (w *writer) merge(c0, r0, c1, r1 int, v interface{}, style int) {
	if c0 == c1 && r0 == r1 {
		w.set(c0, r0, v, style)
		return
	}
	from, to := cellName(c0, r0), cellName(c1, r1)
	w.keep(w.f.MergeCell(sheetName, from, to))
	w.keep(w.f.SetCellValue(sheetName, from, v))
	w.keep(w.f.SetCellStyle(sheetName, from, to, style))
}

func (w *writer) style(c0, r0, c1, r1 int, style int) {
	w.keep(w.f.SetCellStyle(sheetName, cellName(c0, r0), cellName(c1, r1), style))
}

func (w *writer) rowHeight(row int, h float64) {
	w.keep(w.f.SetRowHeight(sheetName, row+1, h))
}

func (w *writer) colWidth(col int, width float64) {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		w.keep(err)
		return
	}
	w.keep(w.f.SetColWidth(sheetName, name, name, width))
}
