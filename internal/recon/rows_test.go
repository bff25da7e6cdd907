package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-recon/internal/model"
)

func rowWith(key string, recs ...*Record) *Row {
	row := &Row{Key: key, records: make(map[model.Source][]*Record)}
	for _, r := range recs {
		row.records[r.Source] = append(row.records[r.Source], r)
	}
	evaluateReasons(row)
	return row
}

func TestBuildRows_GroupsBySKUKey(t *testing.T) {
	rows := BuildRows([]*Record{
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", f(499)),
		rec(model.SourceFieldService, "b1", "Panel Xtra", "mod100", f(499)),
	})
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "sku:MOD100", row.Key)
	assert.Equal(t, "a1", row.Primary(model.SourceCRM).ID)
	assert.Equal(t, "b1", row.Primary(model.SourceFieldService).ID)
	assert.Nil(t, row.Primary(model.SourceInventory))

	// Names disagree but the shared SKU keeps the name reason out.
	assert.Equal(t, []string{"Missing in Inventory"}, row.Reasons)
	assert.True(t, row.IsMismatch)
	assert.Equal(t, []model.Source{model.SourceInventory}, row.MissingSources())
}

func TestBuildRows_FullyMatched(t *testing.T) {
	rows := BuildRows([]*Record{
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", f(499)),
		rec(model.SourceFieldService, "b1", "Panel X", "MOD-100", f(499)),
		rec(model.SourceInventory, "c1", "Panel X", "MOD-100", f(499)),
	})
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsMismatch)
	assert.Empty(t, rows[0].Reasons)
}

func TestBuildRows_Duplicates(t *testing.T) {
	rows := BuildRows([]*Record{
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", f(499)),
		rec(model.SourceInventory, "c1", "Panel X", "MOD-100", f(499)),
		rec(model.SourceInventory, "c2", "Panel X", "MOD-100", f(480)),
	})
	require.Len(t, rows, 1)

	row := rows[0]
	// The first inventory record in input order is the primary; the extra
	// only counts toward the duplicate reason.
	assert.Equal(t, "c1", row.Primary(model.SourceInventory).ID)
	assert.Equal(t, []string{
		"Missing in Field Service",
		"Duplicate Inventory entries (2)",
	}, row.Reasons)
}

func TestBuildRows_PriceMismatch(t *testing.T) {
	rows := BuildRows([]*Record{
		rec(model.SourceCRM, "a1", "Inverter INV-5", "INV-5", f(500)),
		rec(model.SourceFieldService, "b1", "Inverter INV-5", "INV-5", f(500)),
		rec(model.SourceInventory, "c1", "Inverter INV-5", "INV-5", f(650)),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Price mismatch"}, rows[0].Reasons)
	assert.True(t, rows[0].IsMismatch)
}

func TestBuildRows_PriceEqualAfterCentsRounding(t *testing.T) {
	rows := BuildRows([]*Record{
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", f(499.004)),
		rec(model.SourceFieldService, "b1", "Panel X", "MOD-100", f(499.0)),
		rec(model.SourceInventory, "c1", "Panel X", "MOD-100", nil),
	})
	require.Len(t, rows, 1)
	// Sub-cent difference rounds away; a missing price never disagrees.
	assert.Empty(t, rows[0].Reasons)
}

func TestBuildRows_KeyOrderFollowsInput(t *testing.T) {
	rows := BuildRows([]*Record{
		rec(model.SourceCRM, "a1", "Zulu", "ZZZ-9", nil),
		rec(model.SourceCRM, "a2", "Alpha", "AAA-1", nil),
		rec(model.SourceInventory, "c1", "Zulu again", "ZZZ-9", nil),
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "sku:ZZZ9", rows[0].Key)
	assert.Equal(t, "sku:AAA1", rows[1].Key)
}

func TestEvaluateReasons_NameMismatchWithoutCommonSKU(t *testing.T) {
	// Rows like this only arise from merges: grouping by key cannot put
	// different names under one name key.
	row := rowWith("sku:MOD100",
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", nil),
		rec(model.SourceFieldService, "b1", "Panel Xtra Plus", "", nil),
		rec(model.SourceInventory, "c1", "Panel X", "MOD-100", nil),
	)
	assert.Contains(t, row.Reasons, "Product name mismatch")
	assert.NotContains(t, row.Reasons, "SKU mismatch")
}

func TestEvaluateReasons_SKUMismatch(t *testing.T) {
	row := rowWith("name:panel x",
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", nil),
		rec(model.SourceFieldService, "b1", "Panel X", "MOD-200", nil),
	)
	assert.Equal(t, []string{"Missing in Inventory", "SKU mismatch"}, row.Reasons)
}

func TestSortRows(t *testing.T) {
	matched := rowWith("sku:AAA1",
		rec(model.SourceCRM, "a1", "Alpha", "AAA-1", nil),
		rec(model.SourceFieldService, "b1", "Alpha", "AAA-1", nil),
		rec(model.SourceInventory, "c1", "Alpha", "AAA-1", nil),
	)
	mismatchedZ := rowWith("sku:ZZZ9", rec(model.SourceCRM, "a2", "Zulu", "ZZZ-9", nil))
	mismatchedB := rowWith("sku:BBB2", rec(model.SourceCRM, "a3", "Bravo", "BBB-2", nil))

	rows := []*Row{matched, mismatchedZ, mismatchedB}
	sortRows(rows)

	assert.Equal(t, []string{"sku:BBB2", "sku:ZZZ9", "sku:AAA1"},
		[]string{rows[0].Key, rows[1].Key, rows[2].Key})
}
