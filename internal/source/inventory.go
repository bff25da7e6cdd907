package source

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-recon/internal/config"
	"github.com/sells-group/catalog-recon/internal/model"
)

// inventoryItem is the vendor payload shape of the inventory system's stock
// listing. IDs are numeric; prices are numeric or absent.
type inventoryItem struct {
	ID          int64    `json:"id"`
	ProductName string   `json:"product_name"`
	SKU         string   `json:"sku"`
	Price       *float64 `json:"price"`
	StockStatus string   `json:"stock_status"`
	Notes       string   `json:"notes"`
	Link        string   `json:"link"`
}

// NewInventoryCatalog creates the inventory catalog provider.
func NewInventoryCatalog(cfg config.RESTSourceConfig) Provider {
	return newRESTCatalog(model.SourceInventory, cfg, "/api/stock/items", mapInventoryItem)
}

// mapInventoryItem maps the vendor shape into the fixed SourceRecord shape.
// This is the only place inventory field names appear.
func mapInventoryItem(raw json.RawMessage) (model.SourceRecord, error) {
	var item inventoryItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return model.SourceRecord{}, eris.Wrap(err, "inventory: decode item")
	}

	rec := model.SourceRecord{
		Source:      model.SourceInventory,
		Name:        item.ProductName,
		SKU:         item.SKU,
		Status:      item.StockStatus,
		Description: item.Notes,
		URL:         item.Link,
	}
	if item.ID != 0 {
		rec.ID = strconv.FormatInt(item.ID, 10)
	}
	if item.Price != nil && *item.Price >= 0 {
		rec.Price = item.Price
	}
	return rec, nil
}
