package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/catalog-recon/internal/model"
)

func rec(src model.Source, id, name, sku string, price *float64) *Record {
	return NewRecord(model.SourceRecord{Source: src, ID: id, Name: name, SKU: sku, Price: price})
}

func f(v float64) *float64 { return &v }

func TestNewRecord_DerivedFields(t *testing.T) {
	r := rec(model.SourceCRM, "a1", "Solar Panel MOD-100", "MOD-100", f(499))

	assert.Equal(t, "solar panel mod 100", r.NormName)
	assert.Equal(t, "MOD100", r.NormSKU)
	assert.Equal(t, []string{"MOD100"}, r.Identifiers)
	assert.Equal(t, []string{"solar", "panel", "mod", "100"}, r.NameTokens)
	assert.Equal(t, "sku:MOD100", r.Key)
}

func TestNewRecord_IdentifierUnion(t *testing.T) {
	// Name and SKU contribute different identifier tokens.
	r := rec(model.SourceCRM, "a1", "Inverter XR5000-B", "MOD-100", nil)
	assert.Equal(t, []string{"XR5000B", "MOD100"}, r.Identifiers)
}

func TestKeyFor_Cascade(t *testing.T) {
	bySKU := rec(model.SourceCRM, "a1", "Panel", "MOD-100", nil)
	assert.Equal(t, "sku:MOD100", bySKU.Key)

	byName := rec(model.SourceCRM, "a2", "Panel X", "", nil)
	assert.Equal(t, "name:panel x", byName.Key)

	fallback := rec(model.SourceInventory, "42", "", "", nil)
	assert.Equal(t, "fallback:inventory:42", fallback.Key)
	assert.True(t, isFallbackKey(fallback.Key))
	assert.False(t, isFallbackKey(bySKU.Key))
}

func TestKeyFor_PunctuationOnlyFieldsFallBack(t *testing.T) {
	// A SKU that normalizes to empty falls through to the name key.
	r := rec(model.SourceCRM, "a1", "Panel X", "---", nil)
	assert.Equal(t, "name:panel x", r.Key)
}

func TestKeyable(t *testing.T) {
	assert.True(t, rec(model.SourceCRM, "a1", "", "", nil).Keyable())
	assert.True(t, rec(model.SourceCRM, "", "Panel", "", nil).Keyable())
	assert.True(t, rec(model.SourceCRM, "", "", "MOD-100", nil).Keyable())
	assert.False(t, rec(model.SourceCRM, "", "", "", nil).Keyable())
	// Punctuation-only name and SKU normalize to empty.
	assert.False(t, rec(model.SourceCRM, "", "!!!", "--", nil).Keyable())
}

func TestSharesIdentifier(t *testing.T) {
	a := rec(model.SourceCRM, "a1", "Panel MOD-100", "", nil)
	b := rec(model.SourceInventory, "c1", "MOD-100 refurbished", "", nil)
	c := rec(model.SourceInventory, "c2", "Panel XR5000", "", nil)

	assert.True(t, a.SharesIdentifier(b))
	assert.True(t, b.SharesIdentifier(a))
	assert.False(t, a.SharesIdentifier(c))
}

func TestPriceCents(t *testing.T) {
	r := rec(model.SourceCRM, "a1", "Panel", "", f(12.345))
	cents, ok := r.PriceCents()
	assert.True(t, ok)
	assert.Equal(t, int64(1235), cents)

	_, ok = rec(model.SourceCRM, "a2", "Panel", "", nil).PriceCents()
	assert.False(t, ok)
}
