package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type desiredItem struct {
	ID   string
	Name string
}

type existingRow struct {
	RowID string
	Name  string
}

func runDiff(desired []desiredItem, existing []existingRow) childRowDiff[desiredItem, existingRow] {
	return diffChildRows(desired, existing,
		func(d desiredItem) string { return d.ID },
		func(e existingRow) string { return e.RowID },
	)
}

func TestDiffChildRows(t *testing.T) {
	existing := []existingRow{
		{RowID: "a", Name: "tea"},
		{RowID: "b", Name: "fruit"},
		{RowID: "c", Name: "wine"},
	}

	t.Run("mixed update insert delete", func(t *testing.T) {
		desired := []desiredItem{
			{ID: "a", Name: "tea leaves"}, // keep + edit
			{Name: "painting"},            // no id: insert
			{ID: "zzz", Name: "unknown"},  // unknown id: insert
			// b and c omitted: delete
		}

		diff := runDiff(desired, existing)

		require.Len(t, diff.Updates, 1)
		assert.Equal(t, "a", diff.Updates[0].Existing.RowID)
		assert.Equal(t, "tea leaves", diff.Updates[0].Desired.Name)
		require.Len(t, diff.Inserts, 2)
		assert.Equal(t, "painting", diff.Inserts[0].Name)
		assert.Equal(t, "unknown", diff.Inserts[1].Name)
		require.Len(t, diff.Deletes, 2)
		assert.Equal(t, "b", diff.Deletes[0].RowID)
		assert.Equal(t, "c", diff.Deletes[1].RowID)
	})

	t.Run("empty desired deletes everything", func(t *testing.T) {
		diff := runDiff(nil, existing)

		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Inserts)
		assert.Len(t, diff.Deletes, 3)
	})

	t.Run("empty existing inserts everything", func(t *testing.T) {
		diff := runDiff([]desiredItem{{Name: "x"}, {Name: "y"}}, nil)

		assert.Empty(t, diff.Updates)
		assert.Len(t, diff.Inserts, 2)
		assert.Empty(t, diff.Deletes)
	})

	t.Run("duplicate desired id keeps last occurrence", func(t *testing.T) {
		desired := []desiredItem{
			{ID: "a", Name: "first"},
			{ID: "a", Name: "second"},
		}

		diff := runDiff(desired, existing[:1])

		require.Len(t, diff.Updates, 1)
		assert.Equal(t, "second", diff.Updates[0].Desired.Name)
		assert.Empty(t, diff.Inserts)
		assert.Empty(t, diff.Deletes)
	})

	t.Run("conservation over distinct ids", func(t *testing.T) {
		desired := []desiredItem{
			{ID: "a", Name: "tea"},
			{ID: "b", Name: "fruit"},
			{Name: "new one"},
		}

		diff := runDiff(desired, existing)

		// Every distinct desired item lands in exactly one bucket, and every
		// existing row is either updated or deleted.
		assert.Equal(t, len(desired), len(diff.Updates)+len(diff.Inserts))
		assert.Equal(t, len(existing), len(diff.Updates)+len(diff.Deletes))
	})
}
