package sheet

import "github.com/xuri/excelize/v2"

// Highlight fills marking rows whose text needed manual review in the
// source documents.
const (
	fillMultiline = "FFF2CC"
	fillNoteUsed  = "F4CCCC"
	fillBoth      = "D9D2E9"
	fillCanvas    = "A6A6A6"
)

type styles struct {
	merge             int
	title             int
	rev               int
	vert              int
	left              int
	blank             int
	grey              int
	hlMultilineCenter int
	hlMultilineLeft   int
	hlNote            int
	hlBoth            int
}

func boxBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	border := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		border = append(border, excelize.Border{Type: s, Style: 1, Color: "000000"})
	}
	return border
}

func baseStyle(horizontal string) *excelize.Style {
	return &excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 12},
		Border: boxBorder(),
		Alignment: &excelize.Alignment{
			Horizontal: horizontal,
			Vertical:   "center",
			WrapText:   true,
		},
	}
}

func highlight(horizontal, color string) *excelize.Style {
	s := baseStyle(horizontal)
	s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	return s
}

func newStyles(f *excelize.File) (*styles, error) {
	st := &styles{}
	var err error

	if st.merge, err = f.NewStyle(baseStyle("center")); err != nil {
		return nil, err
	}
	if st.left, err = f.NewStyle(baseStyle("left")); err != nil {
		return nil, err
	}

	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 26},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, err
	}

	// Revision cells render "D<rev>" in Symbol so the D shows as a
	// delta glyph.
	rev := baseStyle("center")
	rev.Font = &excelize.Font{Family: "Symbol", Size: 12}
	if st.rev, err = f.NewStyle(rev); err != nil {
		return nil, err
	}

	vert := baseStyle("center")
	vert.Alignment.TextRotation = 90
	if st.vert, err = f.NewStyle(vert); err != nil {
		return nil, err
	}

	blank := baseStyle("center")
	blank.Border = nil
	blank.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFFFF"}}
	if st.blank, err = f.NewStyle(blank); err != nil {
		return nil, err
	}

	if st.grey, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fillCanvas}},
	}); err != nil {
		return nil, err
	}

	if st.hlMultilineCenter, err = f.NewStyle(highlight("center", fillMultiline)); err != nil {
		return nil, err
	}
	if st.hlMultilineLeft, err = f.NewStyle(highlight("left", fillMultiline)); err != nil {
		return nil, err
	}
	if st.hlNote, err = f.NewStyle(highlight("center", fillNoteUsed)); err != nil {
		return nil, err
	}
	if st.hlBoth, err = f.NewStyle(highlight("center", fillBoth)); err != nil {
		return nil, err
	}

	return st, nil
}
