package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/catalog-recon/internal/config"
	"github.com/sells-group/catalog-recon/internal/model"
)

// crmProduct is the Product2 row shape selected by the CRM catalog query.
type crmProduct struct {
	ID          string  `json:"Id"`
	Name        string  `json:"Name"`
	ProductCode string  `json:"ProductCode"`
	UnitPrice   float64 `json:"UnitPrice__c"`
	Status      string  `json:"Status__c"`
	Description string  `json:"Description"`
}

var crmProductFields = []string{
	"Id", "Name", "ProductCode", "UnitPrice__c", "Status__c", "Description",
}

// soqlQuerier is the slice of the Salesforce client the CRM catalog needs.
type soqlQuerier interface {
	Query(soql string, sObject any) error
}

// CRMCatalog fetches the product catalog from Salesforce.
//
// NOTE: the underlying go-salesforce/v3 library does not accept a
// context.Context, so ctx only bounds the rate-limiter wait.
type CRMCatalog struct {
	cfg     config.CRMConfig
	client  soqlQuerier
	limiter *rate.Limiter
	baseURL string
}

// NewCRMCatalog creates the CRM provider. The Salesforce connection is
// established lazily on first Fetch so an unconfigured CRM never blocks
// startup.
func NewCRMCatalog(cfg config.CRMConfig) *CRMCatalog {
	c := &CRMCatalog{cfg: cfg}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}
	return c
}

// WithClient overrides the Salesforce client, for tests.
func (c *CRMCatalog) WithClient(q soqlQuerier) *CRMCatalog {
	c.client = q
	return c
}

func (c *CRMCatalog) Source() model.Source { return model.SourceCRM }

func (c *CRMCatalog) Configured() bool {
	return c.client != nil || c.cfg.Configured()
}

func (c *CRMCatalog) Fetch(ctx context.Context) ([]model.SourceRecord, error) {
	if err := c.connect(); err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "crm: rate limit")
		}
	}

	soql := fmt.Sprintf(
		"SELECT %s FROM Product2 WHERE IsActive = true ORDER BY Id",
		strings.Join(crmProductFields, ", "),
	)

	var products []crmProduct
	if err := c.client.Query(soql, &products); err != nil {
		return nil, eris.Wrap(err, "crm: query products")
	}

	records := make([]model.SourceRecord, 0, len(products))
	for _, p := range products {
		records = append(records, mapCRMProduct(p, c.baseURL))
	}
	return records, nil
}

// connect initializes the JWT-authenticated Salesforce session once.
func (c *CRMCatalog) connect() error {
	if c.client != nil {
		return nil
	}

	pemData, err := os.ReadFile(c.cfg.KeyPath)
	if err != nil {
		return eris.Wrap(err, "crm: read JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         c.cfg.LoginURL,
		Username:       c.cfg.Username,
		ConsumerKey:    c.cfg.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return eris.Wrap(err, "crm: init salesforce")
	}

	c.client = sf
	c.baseURL = c.cfg.LoginURL
	return nil
}

// mapCRMProduct maps the vendor Product2 shape into the fixed SourceRecord
// shape. This is the only place CRM field names appear.
func mapCRMProduct(p crmProduct, baseURL string) model.SourceRecord {
	rec := model.SourceRecord{
		Source:      model.SourceCRM,
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.ProductCode,
		Status:      p.Status,
		Description: p.Description,
	}
	if p.UnitPrice > 0 {
		price := p.UnitPrice
		rec.Price = &price
	}
	if baseURL != "" && p.ID != "" {
		rec.URL = strings.TrimSuffix(baseURL, "/") + "/lightning/r/Product2/" + p.ID + "/view"
	}
	return rec
}
