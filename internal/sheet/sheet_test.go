package sheet

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sovtools/sovgen/internal/sov"
)

func qty(v float64) *float64 { return &v }

func TestRenderCombinedWorkbook(t *testing.T) {
	variants := []sov.VariantRecord{
		{Label: "A", CustomerID: "ACME", ProductID: "YNC-100"},
		{Label: "B", CustomerID: "ACME", ProductID: "YNC-200"},
	}
	parts := []sov.MergedPart{
		{
			Level:       1,
			PartName:    "Bracket Assy",
			DisplayName: "Bracket Assy",
			PartNumber:  "12345-A",
			DrawingNo:   "12345-A",
			Revision:    "2",
			Quantities:  []*float64{qty(2), nil},
		},
		{
			Level:        1,
			PartName:     "Cover",
			DisplayName:  "Special Coating",
			PartNumber:   "67890-B",
			DrawingNo:    "D-67890",
			Revision:     "0",
			Quantities:   []*float64{qty(1), qty(1)},
			FlagNoteUsed: true,
		},
	}

	out := filepath.Join(t.TempDir(), "combined.xlsx")
	err := NewRenderer(zerolog.Nop()).Render(variants, parts, out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	get := func(ref string) string {
		v, err := f.GetCellValue(sheetName, ref)
		require.NoError(t, err)
		return v
	}

	// All parts are level 1, so the part-name column is B and the two
	// quantity columns are F and G.
	assert.Equal(t, "Spreadsheet of Variants", get("A1"))
	assert.Equal(t, "Part Type", get("A15"))
	assert.Equal(t, "Part Name", get("B15"))
	assert.Equal(t, "Part Number", get("C15"))
	assert.Equal(t, "Drawing Number", get("D15"))
	assert.Equal(t, "Rev.", get("E15"))

	assert.Equal(t, "Bracket Assy", get("A16"))
	assert.Equal(t, "Bracket Assy", get("B16"))
	assert.Equal(t, "12345-A", get("C16"))
	assert.Equal(t, "D2", get("E16"))
	assert.Equal(t, "2", get("F16"))
	assert.Equal(t, "", get("G16"), "absent quantity stays blank")

	assert.Equal(t, "Special Coating", get("B17"), "note text replaces the visible name")
	assert.Equal(t, "D-67890", get("D17"))

	// variant metadata in the rotated boxes
	assert.Equal(t, "ACME", get("F13"))
	assert.Equal(t, "YNC-100", get("F14"))
	assert.Equal(t, "YNC-200", get("G14"))
}

func TestRenderDeeperLevelsShiftColumns(t *testing.T) {
	variants := []sov.VariantRecord{{Label: "A"}}
	parts := []sov.MergedPart{
		{Level: 1, PartName: "Assy", DisplayName: "Assy", Quantities: []*float64{qty(1)}},
		{Level: 2, PartName: "Screw", DisplayName: "Screw", Quantities: []*float64{qty(4)}},
	}

	out := filepath.Join(t.TempDir(), "combined.xlsx")
	require.NoError(t, NewRenderer(zerolog.Nop()).Render(variants, parts, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	// maxLevel 2 pushes the part-name column to C
	v, err := f.GetCellValue(sheetName, "C15")
	require.NoError(t, err)
	assert.Equal(t, "Part Name", v)

	v, err = f.GetCellValue(sheetName, "B17")
	require.NoError(t, err)
	assert.Equal(t, "Screw", v, "level-2 row indents one column")
}

func TestRenderEmptyParts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "combined.xlsx")
	err := NewRenderer(zerolog.Nop()).Render([]sov.VariantRecord{{Label: "A"}}, nil, out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Spreadsheet of Variants", v)
}
