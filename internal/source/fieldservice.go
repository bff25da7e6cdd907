package source

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-recon/internal/config"
	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/normalize"
)

// fieldServiceItem is the vendor payload shape of the field-service job
// system's parts listing. Prices arrive as display strings ("$1,299.00").
type fieldServiceItem struct {
	UUID       string `json:"uuid"`
	Title      string `json:"title"`
	PartNumber string `json:"part_number"`
	UnitCost   string `json:"unit_cost"`
	State      string `json:"state"`
	Details    string `json:"details"`
	Permalink  string `json:"permalink"`
}

// NewFieldServiceCatalog creates the field-service catalog provider.
func NewFieldServiceCatalog(cfg config.RESTSourceConfig) Provider {
	return newRESTCatalog(model.SourceFieldService, cfg, "/api/v1/parts", mapFieldServiceItem)
}

// mapFieldServiceItem maps the vendor shape into the fixed SourceRecord
// shape. This is the only place field-service field names appear.
func mapFieldServiceItem(raw json.RawMessage) (model.SourceRecord, error) {
	var item fieldServiceItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return model.SourceRecord{}, eris.Wrap(err, "field_service: decode item")
	}
	return model.SourceRecord{
		Source:      model.SourceFieldService,
		ID:          item.UUID,
		Name:        item.Title,
		SKU:         item.PartNumber,
		Price:       normalize.Price(item.UnitCost),
		Status:      item.State,
		Description: item.Details,
		URL:         item.Permalink,
	}, nil
}
