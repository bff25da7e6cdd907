package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/catalog-recon/internal/config"
	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/resilience"
)

// restCatalog is a paginated JSON catalog API client shared by the field
// service and inventory providers. Each provider supplies its endpoint path
// and a vendor-payload mapping function; everything else (pagination, rate
// limiting, retry) lives here.
type restCatalog struct {
	src     model.Source
	cfg     config.RESTSourceConfig
	path    string
	mapItem func(json.RawMessage) (model.SourceRecord, error)

	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

func newRESTCatalog(src model.Source, cfg config.RESTSourceConfig, path string, mapItem func(json.RawMessage) (model.SourceRecord, error)) *restCatalog {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &restCatalog{
		src:     src,
		cfg:     cfg,
		path:    path,
		mapItem: mapItem,
		client:  &http.Client{Timeout: timeout},
		retry:   resilience.DefaultRetryConfig(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}
	return c
}

func (c *restCatalog) Source() model.Source { return c.src }

func (c *restCatalog) Configured() bool { return c.cfg.Configured() }

// Fetch walks the paginated listing until a short page signals the end.
func (c *restCatalog) Fetch(ctx context.Context) ([]model.SourceRecord, error) {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}

	var out []model.SourceRecord
	for page := 1; ; page++ {
		items, err := c.fetchPage(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			rec, err := c.mapItem(item)
			if err != nil {
				return nil, eris.Wrapf(err, "%s: map item on page %d", c.src, page)
			}
			out = append(out, rec)
		}
		if len(items) < pageSize {
			return out, nil
		}
	}
}

func (c *restCatalog) fetchPage(ctx context.Context, page, pageSize int) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s%s?page=%d&per_page=%d", c.cfg.BaseURL, c.path, page, pageSize)

	var items []json.RawMessage
	err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return eris.Wrapf(err, "%s: build request", c.src)
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("%s: page %d returned status %d", c.src, page, resp.StatusCode)
			if resilience.RetryableStatus(resp.StatusCode) {
				return resilience.NewTransientError(err, resp.StatusCode)
			}
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resilience.NewTransientError(eris.Wrapf(err, "%s: read page %d", c.src, page), 0)
		}

		items = items[:0]
		if err := json.Unmarshal(body, &items); err != nil {
			return eris.Wrapf(err, "%s: decode page %d", c.src, page)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
