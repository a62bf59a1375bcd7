package sov

import "fmt"

// Merge reconciles the entries of several variants into a single ordered
// part list with one quantity slot per variant.
//
// Top-level entries merge across variants on part number plus normalized
// note, so the same assembly ordered in two variants lands on one row
// while a note change forces a separate row. Deeper levels never merge
// across variants: each occurrence keys on its variant index and a
// global sequence number, preserving the sub-tree of every variant
// verbatim.
//
// Rows are then segmented into level-1 runs and the runs regrouped by
// the canonical name of their level-1 head, first-encounter order, so
// all occurrences of one assembly sit together in the output.
func Merge(variants []VariantRecord) []MergedPart {
	parts := make(map[string]*MergedPart)
	var order []string

	makeKey := func(e *BomEntry, vi, seq int) string {
		if e.Level == 1 {
			return fmt.Sprintf("%s@@n=%s", e.PartNumber, e.NoteNormalized)
		}
		return fmt.Sprintf("%s@@v%d@@i%d", e.PartNumber, vi, seq)
	}

	seq := 0
	for vi, v := range variants {
		for i := range v.Entries {
			e := &v.Entries[i]
			key := makeKey(e, vi, seq)
			seq++

			p, ok := parts[key]
			if !ok {
				p = &MergedPart{
					Level:                e.Level,
					PartName:             e.PartName,
					DisplayName:          e.DisplayName,
					PartNumber:           e.PartNumber,
					DrawingNo:            e.DrawingNo,
					Note:                 e.Note,
					NoteNormalized:       e.NoteNormalized,
					Revision:             e.Revision,
					Quantities:           make([]*float64, len(variants)),
					FlagMultilineEnglish: e.FlagMultilineEnglish,
					FlagNoteUsed:         e.FlagNoteUsed,
				}
				parts[key] = p
				order = append(order, key)
			}

			if e.Quantity != nil {
				total := *e.Quantity
				if p.Quantities[vi] != nil {
					total += *p.Quantities[vi]
				}
				if total == 0 {
					p.Quantities[vi] = nil
				} else {
					t := total
					p.Quantities[vi] = &t
				}
			}
		}
	}

	// Segment into runs headed by a level-1 row.
	var segments [][]string
	var current []string
	for _, key := range order {
		if parts[key].Level == 1 {
			if len(current) > 0 {
				segments = append(segments, current)
			}
			current = []string{key}
		} else {
			current = append(current, key)
		}
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}

	// Group runs by the canonical name of their head row.
	segByName := make(map[string][][]string)
	var nameOrder []string
	for _, seg := range segments {
		name := parts[seg[0]].PartName
		if _, ok := segByName[name]; !ok {
			nameOrder = append(nameOrder, name)
		}
		segByName[name] = append(segByName[name], seg)
	}

	var out []MergedPart
	for _, name := range nameOrder {
		for _, seg := range segByName[name] {
			for _, key := range seg {
				out = append(out, *parts[key])
			}
		}
	}
	return out
}

// MaxLevel returns the deepest indent level present, at least 1. The
// sheet layout reserves one indent column per level.
func MaxLevel(parts []MergedPart) int {
	max := 1
	for i := range parts {
		if parts[i].Level > max {
			max = parts[i].Level
		}
	}
	return max
}
