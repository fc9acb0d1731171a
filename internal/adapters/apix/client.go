// Package apix reads products and inventory from the ERP's OData API.
package apix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"shopify-reconciler/internal/adapters/apix/dto"
	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/logging"
)

const defaultMaxPages = 1000

type Client struct {
	config     config.LocalConfig
	httpClient *httpx.Client
	logger     logging.LoggerService
}

func NewClient(cfg config.LocalConfig, httpClient *httpx.Client, logger logging.LoggerService) *Client {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) FetchProducts(ctx context.Context) ([]model.LocalProduct, error) {
	records, err := c.fetchRecords(ctx, "products", c.config.ProductsURL)
	if err != nil {
		return nil, err
	}
	fields := c.config.Fields
	products := make([]model.LocalProduct, 0, len(records))
	for _, record := range records {
		products = append(products, model.LocalProduct{
			Sku:       field(record, fields.Sku),
			BasePrice: field(record, fields.Price),
		})
	}
	return products, nil
}

func (c *Client) FetchInventory(ctx context.Context) ([]model.InventoryRecord, error) {
	records, err := c.fetchRecords(ctx, "inventory", c.config.InventoryURL)
	if err != nil {
		return nil, err
	}
	fields := c.config.Fields
	inventory := make([]model.InventoryRecord, 0, len(records))
	for _, record := range records {
		inventory = append(inventory, model.InventoryRecord{
			Sku:         field(record, fields.Sku),
			InitialQty:  field(record, fields.Initial),
			ReceivedQty: field(record, fields.Received),
			ShippedQty:  field(record, fields.Shipped),
			RecordedAt:  field(record, fields.RecordedAt),
		})
	}
	return inventory, nil
}

// fetchRecords follows @odata.nextLink until it runs out or MaxPages is hit.
func (c *Client) fetchRecords(ctx context.Context, name, endpoint string) ([]dto.Record, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("apix client is nil")
	}
	next := strings.TrimSpace(endpoint)
	if next == "" {
		return nil, fmt.Errorf("apix %s url is empty", name)
	}

	var all []dto.Record
	for page := 0; next != ""; page++ {
		if page >= c.config.MaxPages {
			c.logger.LogWarning("apix page ceiling reached, remaining records ignored",
				zap.String("source", name),
				zap.Int("max_pages", c.config.MaxPages))
			break
		}
		resp, err := c.httpClient.Do(ctx, httpx.Request{
			Target: "apix " + name,
			Method: http.MethodGet,
			URL:    next,
			Header: c.headers(),
		})
		if err != nil {
			return nil, err
		}
		records, link, err := parseEnvelope(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("apix %s page %d: %w", name, page+1, err)
		}
		all = append(all, records...)

		if next, err = resolveNext(next, link); err != nil {
			return nil, fmt.Errorf("apix %s next link: %w", name, err)
		}
	}

	c.logger.Log(fmt.Sprintf("apix %s fetched records=%d", name, len(all)))
	return all, nil
}

func (c *Client) headers() http.Header {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if token := strings.TrimSpace(c.config.Token); token != "" {
		header.Set("Authorization", token)
	}
	return header
}

// resolveNext makes a relative nextLink absolute against the current page.
func resolveNext(current, link string) (string, error) {
	if link == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
