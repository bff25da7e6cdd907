package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "CRM", SourceCRM.Label())
	assert.Equal(t, "Field Service", SourceFieldService.Label())
	assert.Equal(t, "Inventory", SourceInventory.Label())
	assert.Equal(t, "bogus", Source("bogus").Label())
}

func TestSourceValid(t *testing.T) {
	for _, src := range Sources {
		assert.True(t, src.Valid(), "source %s", src)
	}
	assert.False(t, Source("bogus").Valid())
	assert.False(t, Source("").Valid())
}

func TestSourcesOrder(t *testing.T) {
	assert.Equal(t, []Source{SourceCRM, SourceFieldService, SourceInventory}, Sources)
}

func TestRecordRef(t *testing.T) {
	r := SourceRecord{Source: SourceFieldService, ID: "b1"}
	assert.Equal(t, "field_service:b1", r.Ref())
}
