package model

// Source identifies one of the three catalogs being reconciled.
type Source string

const (
	SourceCRM          Source = "crm"
	SourceFieldService Source = "field_service"
	SourceInventory    Source = "inventory"
)

// Sources lists the catalogs in canonical order. Every per-source loop in the
// engine iterates this slice so output ordering never depends on map order.
var Sources = []Source{SourceCRM, SourceFieldService, SourceInventory}

// Label returns the human-readable name used in discrepancy reasons.
func (s Source) Label() string {
	switch s {
	case SourceCRM:
		return "CRM"
	case SourceFieldService:
		return "Field Service"
	case SourceInventory:
		return "Inventory"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the three known catalogs.
func (s Source) Valid() bool {
	switch s {
	case SourceCRM, SourceFieldService, SourceInventory:
		return true
	}
	return false
}

// SourceHealth describes the fetch outcome for one catalog.
type SourceHealth struct {
	Configured bool   `json:"configured"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
}
