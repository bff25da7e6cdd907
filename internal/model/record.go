package model

// SourceRecord is a product entry as read from one source system. Field names
// are already mapped from vendor payloads by the source clients; the engine
// never sees raw vendor JSON. Records are immutable once fetched.
type SourceRecord struct {
	Source      Source   `json:"source"`
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Status      string   `json:"status,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Ref returns the cross-row identity key "{source}:{id}" used by the
// auto-merge index.
func (r SourceRecord) Ref() string {
	return string(r.Source) + ":" + r.ID
}
