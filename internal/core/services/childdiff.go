package services

// childRowPair couples a desired child item with the existing row it updates.
type childRowPair[D, E any] struct {
	Desired  D
	Existing E
}

// childRowDiff is the outcome of matching a desired child set against the
// existing rows of a cluster.
type childRowDiff[D, E any] struct {
	Updates []childRowPair[D, E]
	Inserts []D
	Deletes []E
}

// diffChildRows matches desired child items against existing rows by id.
// A desired item whose id matches an existing row becomes an update and marks
// that row kept; items with no id (or an unknown id) become inserts; existing
// rows never referenced become deletes. Duplicate ids in the desired set are
// undefined behavior for callers; here the last occurrence wins the kept
// mapping and earlier occurrences are dropped.
func diffChildRows[D, E any](desired []D, existing []E, desiredID func(D) string, existingID func(E) string) childRowDiff[D, E] {
	existingByID := make(map[string]E, len(existing))
	for _, row := range existing {
		existingByID[existingID(row)] = row
	}

	var diff childRowDiff[D, E]
	updateIdx := make(map[string]int)
	kept := make(map[string]bool, len(existing))

	for _, item := range desired {
		id := desiredID(item)
		if id != "" {
			if row, ok := existingByID[id]; ok {
				if i, dup := updateIdx[id]; dup {
					diff.Updates[i] = childRowPair[D, E]{Desired: item, Existing: row}
				} else {
					updateIdx[id] = len(diff.Updates)
					diff.Updates = append(diff.Updates, childRowPair[D, E]{Desired: item, Existing: row})
				}
				kept[id] = true
				continue
			}
		}
		diff.Inserts = append(diff.Inserts, item)
	}

	for _, row := range existing {
		if !kept[existingID(row)] {
			diff.Deletes = append(diff.Deletes, row)
		}
	}

	return diff
}
