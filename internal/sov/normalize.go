package sov

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// itemIndexRe accepts a dotted-decimal item index with one or two
	// numeric groups ("12", "12.3"). Anything else is a header,
	// separator, or wrapped continuation line.
	itemIndexRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

	leadingIntRe = regexp.MustCompile(`^(\d+)`)
	digitRunRe   = regexp.MustCompile(`\d+`)
	lettersRe    = regexp.MustCompile(`[^A-Za-z]`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)

	// trivialNoteRe matches placeholder note content that must be
	// treated as no note at all: "in preparation", optionally prefixed
	// by 欠図 ("missing drawing").
	trivialNoteRe = regexp.MustCompile(`(?i)^\s*(欠図\s*)?(in\s+preparation)\s*$`)
)

// normalizeRow converts one data row of a located table into a BomEntry.
// Returns nil when the row is not a data row, is struck out, or yields no
// usable part name.
func normalizeRow(row []string, cmap columnMap, deleted map[int]bool, opts Options, page int) *BomEntry {
	if len(row) == 0 {
		return nil
	}

	idx := cleanCell(row[0])
	if idx == "" || !itemIndexRe.MatchString(idx) {
		return nil
	}
	if m := leadingIntRe.FindString(idx); m != "" {
		if n, err := strconv.Atoi(m); err == nil && deleted[n] {
			return nil
		}
	}

	level := 1
	for ci := 1; ci <= maxIndentColumn; ci++ {
		if ci < len(row) && cleanCell(row[ci]) != "" {
			level = ci
			break
		}
	}

	raw := cellAt(row, cmap.partName)
	lines := splitLines(raw)
	if level == 1 && strings.Contains(strings.ToLower(strings.Join(lines, " ")), "outline drawing") {
		return nil
	}

	note := cleanCell(cellAt(row, cmap.note))
	if isTrivialNote(note) {
		note = ""
	}

	partName, multiline := reconstructName(lines)
	if partName == "" {
		return nil
	}

	partNumber := normalizeText(cleanCell(cellAt(row, cmap.partNumber)))
	drawingNo := normalizeText(cleanCell(cellAt(row, cmap.drawingNo)))
	if drawingNo == "" {
		drawingNo = partNumber
	}

	displayName := partName
	noteUsed := note != ""
	if noteUsed {
		displayName = note
	}

	entry := &BomEntry{
		Level:                level,
		ItemIndex:            idx,
		PartNumber:           partNumber,
		DrawingNo:            drawingNo,
		PartName:             partName,
		DisplayName:          displayName,
		Note:                 note,
		NoteNormalized:       normalizeNote(note),
		Revision:             parseRevision(cellAt(row, cmap.change)),
		Quantity:             parseQuantity(cellAt(row, cmap.quantity), opts.ZeroQuantity),
		Page:                 page,
		FlagMultilineEnglish: multiline,
		FlagNoteUsed:         noteUsed,
	}
	return entry
}

// reconstructName rebuilds the English display name from a multi-line,
// possibly bilingual part-name cell. The first line is assumed to be a
// non-English label line and dropped (unless it is the only line); the
// next candidate is dropped too when it contains non-ASCII characters or
// has fewer letters than the cut threshold. The reported flag is true
// only when two or more lines survive filtering, i.e. stitching was
// genuinely required.
func reconstructName(lines []string) (string, bool) {
	var content []string
	if len(lines) > 1 {
		content = lines[1:]
	} else {
		content = lines
	}

	if len(content) > 0 {
		cand := content[0]
		letters := lettersRe.ReplaceAllString(cand, "")
		if hasNonASCII(cand) || len(letters) < cutThreshold {
			content = content[1:]
		}
	}

	multiline := len(content) > 1

	// Flatten: concatenate directly only across a true mid-word split
	// ("AS" + "SY" -> "ASSY"); otherwise join with a space.
	var flat string
	for i, ln := range content {
		ln = strings.TrimSpace(ln)
		if i == 0 {
			flat = ln
			continue
		}
		if flat != "" && ln != "" &&
			isASCIILetter(flat[len(flat)-1]) && isASCIILetter(ln[0]) &&
			!strings.HasSuffix(flat, " ") {
			flat += ln
		} else {
			flat += " " + ln
		}
	}

	words := strings.Fields(stripNonASCII(flat))
	formatted := make([]string, 0, len(words))
	for _, w := range words {
		formatted = append(formatted, formatNameWord(w))
	}
	return strings.TrimSpace(strings.Join(formatted, " ")), multiline
}

// formatNameWord capitalizes a name word while preserving short acronyms
// and part designators containing digits.
func formatNameWord(w string) string {
	if strings.ContainsAny(w, "0123456789") {
		return strings.ToUpper(w)
	}
	if w == strings.ToUpper(w) && len(w) <= cutThreshold {
		return w
	}
	lower := strings.ToLower(w)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// parseRevision extracts the revision number as the last run of digits in
// the change-column text, defaulting to "0".
func parseRevision(changeCell string) string {
	runs := digitRunRe.FindAllString(cleanCell(changeCell), -1)
	if len(runs) == 0 {
		return "0"
	}
	return runs[len(runs)-1]
}

// parseQuantity parses the quantity cell as an integer, then as a float.
// Blank or unparsable text is absent (nil), or zero when the caller opted
// into the legacy zero semantics.
func parseQuantity(cell string, zeroWhenUnparsable bool) *float64 {
	txt := cleanCell(cell)
	if txt != "" {
		if n, err := strconv.Atoi(txt); err == nil {
			q := float64(n)
			return &q
		}
		if f, err := strconv.ParseFloat(txt, 64); err == nil {
			return &f
		}
	}
	if zeroWhenUnparsable {
		q := 0.0
		return &q
	}
	return nil
}

// isTrivialNote reports whether note text is a placeholder carrying no
// information ("in preparation", 欠図, or both).
func isTrivialNote(note string) bool {
	if note == "" {
		return false
	}
	n := strings.TrimSpace(normalizeText(note))
	return trivialNoteRe.MatchString(n) || n == "欠図"
}

// normalizeNote canonicalizes note text for cross-variant matching;
// trivial notes canonicalize to empty.
func normalizeNote(note string) string {
	if note == "" || isTrivialNote(note) {
		return ""
	}
	n := strings.TrimSpace(normalizeText(note))
	n = strings.Join(strings.Fields(n), " ")
	n = strings.Trim(n, " ;:-")
	return strings.ToLower(n)
}

// normalizeText applies Unicode NFKC normalization (full-width forms in
// these documents fold to their ASCII equivalents).
func normalizeText(s string) string {
	return norm.NFKC.String(s)
}

func stripNonASCII(s string) string {
	return nonASCIIRe.ReplaceAllString(s, "")
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 0x7F {
			return true
		}
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// splitLines returns the non-empty trimmed lines of a cell.
func splitLines(cell string) []string {
	var out []string
	for _, ln := range strings.Split(cell, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// cellAt reads a column defensively; rows are often shorter than the
// mapped index.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
