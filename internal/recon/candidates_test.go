package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-recon/internal/model"
)

func newTestFinder(t *testing.T, pools map[model.Source][]*Record) *Finder {
	t.Helper()
	score := DefaultScoreConfig()
	cfg := DefaultFinderConfig()
	require.NoError(t, score.Validate())
	require.NoError(t, cfg.Validate())
	return NewFinder(score, cfg, pools)
}

func TestForRow_NameAndPriceCandidate(t *testing.T) {
	anchor := rec(model.SourceCRM, "a1", "Pack Battery 10kWh", "", f(9500))
	cand := rec(model.SourceInventory, "c1", "Battery Pack 10kWh", "", f(9600))

	finder := newTestFinder(t, map[model.Source][]*Record{
		model.SourceInventory: {cand},
	})
	row := rowWith("name:pack battery 10kwh", anchor)

	got := finder.ForRow(row, map[string]struct{}{})
	require.Len(t, got, 1)
	assert.Equal(t, model.SourceInventory, got[0].Source)
	assert.Equal(t, "c1", got[0].Record.ID)
	assert.InDelta(t, 0.76, got[0].Score, 1e-9)
	assert.Equal(t, []string{SignalNameVeryClose, SignalPriceClose}, got[0].Signals)
}

func TestForRow_BelowThresholdExcluded(t *testing.T) {
	anchor := rec(model.SourceCRM, "a1", "Solar Panel Blue Large", "", nil)
	// Half the tokens overlap: name signal 0.25 and nothing else, under the
	// 0.45 threshold.
	cand := rec(model.SourceInventory, "c1", "Solar Panel", "", nil)

	finder := newTestFinder(t, map[model.Source][]*Record{
		model.SourceInventory: {cand},
	})
	row := rowWith("name:solar panel blue large", anchor)

	assert.Empty(t, finder.ForRow(row, map[string]struct{}{}))
}

func TestForRow_QuickFilterDiscardsUnrelated(t *testing.T) {
	anchor := rec(model.SourceCRM, "a1", "Solar Panel Blue", "", f(100))
	cand := rec(model.SourceInventory, "c1", "Garden Hose Reel", "", f(900))

	finder := newTestFinder(t, map[model.Source][]*Record{
		model.SourceInventory: {cand},
	})
	row := rowWith("name:solar panel blue", anchor)

	assert.Empty(t, finder.ForRow(row, map[string]struct{}{}))
	assert.False(t, finder.quickFilter([]*Record{anchor}, cand))
}

func TestForRow_ClaimedRecordsSkipped(t *testing.T) {
	anchor := rec(model.SourceCRM, "a1", "Panel MOD-100", "MOD-100", nil)
	cand := rec(model.SourceInventory, "c1", "Panel MOD-100", "MOD-100", nil)

	finder := newTestFinder(t, map[model.Source][]*Record{
		model.SourceInventory: {cand},
	})
	row := rowWith("sku:MOD100", anchor)

	require.NotEmpty(t, finder.ForRow(row, map[string]struct{}{}))
	claimed := map[string]struct{}{cand.Ref(): {}}
	assert.Empty(t, finder.ForRow(row, claimed))
}

func TestForRow_CapAndTieBreak(t *testing.T) {
	anchor := rec(model.SourceCRM, "a1", "Panel MOD-100", "MOD-100", nil)
	// Four candidates with identical scores: identifier match plus the same
	// name-overlap tier. Ties break on name, so Delta is dropped.
	pool := []*Record{
		rec(model.SourceInventory, "c4", "MOD-100 Delta", "", nil),
		rec(model.SourceInventory, "c2", "MOD-100 Bravo", "", nil),
		rec(model.SourceInventory, "c1", "MOD-100 Alpha", "", nil),
		rec(model.SourceInventory, "c3", "MOD-100 Charlie", "", nil),
	}

	finder := newTestFinder(t, map[model.Source][]*Record{
		model.SourceInventory: pool,
	})
	row := rowWith("sku:MOD100", anchor)

	got := finder.ForRow(row, map[string]struct{}{})
	require.Len(t, got, 3)
	assert.Equal(t, "MOD-100 Alpha", got[0].Record.Name)
	assert.Equal(t, "MOD-100 Bravo", got[1].Record.Name)
	assert.Equal(t, "MOD-100 Charlie", got[2].Record.Name)
}

func TestForRow_MatchedRowGetsNothing(t *testing.T) {
	row := rowWith("sku:MOD100",
		rec(model.SourceCRM, "a1", "Panel X", "MOD-100", nil),
		rec(model.SourceFieldService, "b1", "Panel X", "MOD-100", nil),
		rec(model.SourceInventory, "c1", "Panel X", "MOD-100", nil),
	)
	finder := newTestFinder(t, map[model.Source][]*Record{})
	assert.Nil(t, finder.ForRow(row, map[string]struct{}{}))
}

func TestClaimedSet_OnlyMatchedRows(t *testing.T) {
	matched := rowWith("sku:AAA1",
		rec(model.SourceCRM, "a1", "Alpha", "AAA-1", nil),
		rec(model.SourceFieldService, "b1", "Alpha", "AAA-1", nil),
		rec(model.SourceInventory, "c1", "Alpha", "AAA-1", nil),
	)
	open := rowWith("sku:ZZZ9", rec(model.SourceCRM, "a2", "Zulu", "ZZZ-9", nil))

	claimed := claimedSet([]*Row{matched, open})
	assert.Contains(t, claimed, "crm:a1")
	assert.Contains(t, claimed, "field_service:b1")
	assert.Contains(t, claimed, "inventory:c1")
	assert.NotContains(t, claimed, "crm:a2")
}

func TestPopulate(t *testing.T) {
	anchor := rec(model.SourceCRM, "a1", "Pack Battery 10kWh", "", f(9500))
	cand := rec(model.SourceInventory, "c1", "Battery Pack 10kWh", "", f(9600))

	matched := rowWith("sku:AAA1",
		rec(model.SourceCRM, "a9", "Alpha", "AAA-1", nil),
		rec(model.SourceFieldService, "b9", "Alpha", "AAA-1", nil),
		rec(model.SourceInventory, "c9", "Alpha", "AAA-1", nil),
	)
	open := rowWith("name:pack battery 10kwh", anchor)

	finder := newTestFinder(t, map[model.Source][]*Record{
		model.SourceCRM:       {anchor},
		model.SourceInventory: {cand, matched.Primary(model.SourceInventory)},
	})
	finder.Populate([]*Row{matched, open})

	assert.Nil(t, matched.Possible)
	require.Len(t, open.Possible, 1)
	assert.Equal(t, "c1", open.Possible[0].Record.ID)
}
