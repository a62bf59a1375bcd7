// Package sov extracts Bill-of-Materials entries from SOV ("Spreadsheet
// of Variants") PDF documents and reconciles several variants' entry
// lists into one ordered, side-by-side comparable structure.
package sov

const (
	// cutThreshold is both the maximum length of a preserved acronym and
	// the minimum letters-only length an English name candidate line must
	// have to survive filtering.
	cutThreshold = 3

	// gutterMaxX is the right edge of the left gutter region holding the
	// item index column; red geometry beyond it is not a strike mark.
	gutterMaxX = 103.0

	// stripPadAbove and stripPadBelow extend the vertical span of a red
	// strike mark when re-reading the gutter text it annotates.
	stripPadAbove = 13.0
	stripPadBelow = 10.0

	// headerScanRows caps how deep into the table the header search goes.
	headerScanRows = 6

	// fallbackHeaderRow is used when no header row is detected.
	fallbackHeaderRow = 2

	// maxIndentColumn bounds the indentation columns encoding hierarchy
	// level (columns 1..maxIndentColumn).
	maxIndentColumn = 5
)

// Fallback column indices applied when header-keyword matching does not
// resolve a role. Real-world documents do not always carry a detectable
// header, so degrading to the conventional layout beats failing.
const (
	fallbackPartNumberCol = 6
	fallbackDrawingNoCol  = 17
	fallbackPartNameCol   = 19
	fallbackQuantityCol   = 23
	fallbackNoteCol       = 24
)

// Options configures the extraction pipeline.
type Options struct {
	// StrictHeader additionally requires a "qty" cell for header-row
	// detection.
	StrictHeader bool

	// ZeroQuantity maps blank or unparsable quantity text to zero rather
	// than absent. The two generations of the source pipeline disagreed
	// on this; absent is the default.
	ZeroQuantity bool

	// MaxFileSize bounds the input documents, in bytes. Zero means
	// unlimited.
	MaxFileSize int64
}

// BomEntry is one normalized BOM row.
type BomEntry struct {
	Level                int
	ItemIndex            string
	PartNumber           string
	DrawingNo            string
	PartName             string
	DisplayName          string
	Note                 string
	NoteNormalized       string
	Revision             string
	Quantity             *float64
	Page                 int
	FlagMultilineEnglish bool
	FlagNoteUsed         bool
}

// VariantRecord is the extraction result for one input document. It is
// immutable after extraction.
type VariantRecord struct {
	Label      string
	Entries    []BomEntry
	CustomerID string
	ProductID  string
}

// Input names one variant document for extraction. The order of inputs
// fixes the output column order.
type Input struct {
	Label string
	Path  string
}

// MergedPart is one row of the reconciled multi-variant output. Its
// quantity vector has one slot per input variant, nil marking absent.
type MergedPart struct {
	Level                int
	PartName             string
	DisplayName          string
	PartNumber           string
	DrawingNo            string
	Note                 string
	NoteNormalized       string
	Revision             string
	Quantities           []*float64
	FlagMultilineEnglish bool
	FlagNoteUsed         bool
}
