package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shopify-reconciler/internal/adapters/shopify/dto"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/infra/httpx"
)

const maxInventoryLevelIDs = 50

// RESTClient talks to the Admin REST API. Catalog pages use the Link header
// page_info cursor.
type RESTClient struct {
	*clientBase
}

func (c *RESTClient) restRequest(ctx context.Context, method, path string, query url.Values, body any, out any) (*httpx.Response, error) {
	if c == nil || c.clientBase == nil {
		return nil, errors.New("shopify client is nil")
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}
	resp, err := c.httpClient.Do(ctx, httpx.Request{
		Target: "shopify rest " + method + " " + path,
		Method: method,
		URL:    endpoint,
		Header: c.headers(),
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return nil, fmt.Errorf("shopify rest %s %s: decode response: %w", method, path, err)
		}
	}
	return resp, nil
}

// FetchVariantPage reads one page of products and flattens their variants.
func (c *RESTClient) FetchVariantPage(ctx context.Context, cursor string, pageSize int) (model.VariantPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampPageSize(pageSize)))
	query.Set("fields", "id,title,variants")
	if strings.TrimSpace(cursor) != "" {
		query.Set("page_info", cursor)
	}

	var data dto.RESTProductsResponse
	resp, err := c.restRequest(ctx, http.MethodGet, "/products.json", query, nil, &data)
	if err != nil {
		return model.VariantPage{}, err
	}

	page := model.VariantPage{}
	for _, product := range data.Products {
		for _, v := range product.Variants {
			variant, err := mapRESTVariant(product, v)
			if err != nil {
				c.logWarning(fmt.Sprintf("shopify variant %d skipped: %v", v.ID, err))
				continue
			}
			page.Variants = append(page.Variants, variant)
		}
	}
	page.NextCursor = nextPageInfo(resp.Header.Get("Link"))
	page.HasNext = page.NextCursor != ""

	if c.options.IncludeInventory && len(page.Variants) > 0 {
		if err := c.attachInventoryLevels(ctx, page.Variants); err != nil {
			return model.VariantPage{}, err
		}
	}
	return page, nil
}

func mapRESTVariant(product dto.RESTProduct, v dto.RESTVariant) (model.RemoteVariant, error) {
	price, _, err := parseMoneyString(v.Price)
	if err != nil {
		return model.RemoteVariant{}, err
	}
	var compareAt *decimal.Decimal
	if v.CompareAtPrice != nil {
		value, ok, err := parseMoneyString(*v.CompareAtPrice)
		if err != nil {
			return model.RemoteVariant{}, err
		}
		if ok {
			compareAt = &value
		}
	}
	variant := model.RemoteVariant{
		VariantID:      strconv.FormatInt(v.ID, 10),
		ProductID:      strconv.FormatInt(product.ID, 10),
		Sku:            v.SKU,
		Price:          price,
		CompareAtPrice: compareAt,
		Tracked:        v.InventoryManagement != nil && *v.InventoryManagement == "shopify",
		DisplayName:    strings.TrimSpace(product.Title + " - " + v.Title),
		ProductTitle:   product.Title,
	}
	if v.InventoryItemID != 0 {
		variant.InventoryItemID = strconv.FormatInt(v.InventoryItemID, 10)
	}
	return variant, nil
}

// attachInventoryLevels fills Available from the sync location's levels.
// Variants with no level there keep a nil Available.
func (c *RESTClient) attachInventoryLevels(ctx context.Context, variants []model.RemoteVariant) error {
	locationID, err := c.primaryLocationID(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.InventoryItemID != "" {
			ids = append(ids, v.InventoryItemID)
		}
	}
	levels := make(map[string]int, len(ids))
	for start := 0; start < len(ids); start += maxInventoryLevelIDs {
		end := min(start+maxInventoryLevelIDs, len(ids))
		query := url.Values{}
		query.Set("inventory_item_ids", strings.Join(ids[start:end], ","))
		query.Set("location_ids", locationID)
		query.Set("limit", strconv.Itoa(maxVariantPageSize))

		var data dto.RESTInventoryLevelsResponse
		if _, err := c.restRequest(ctx, http.MethodGet, "/inventory_levels.json", query, nil, &data); err != nil {
			return err
		}
		for _, level := range data.InventoryLevels {
			if level.Available == nil {
				continue
			}
			levels[strconv.FormatInt(level.InventoryItemID, 10)] = *level.Available
		}
	}

	for i := range variants {
		if available, ok := levels[variants[i].InventoryItemID]; ok {
			variants[i].Available = &available
		}
	}
	return nil
}

// UpdatePrice writes price and compare_at_price; nil clears compare_at_price.
func (c *RESTClient) UpdatePrice(ctx context.Context, req model.VariantUpdateRequest) error {
	if err := validatePriceRequest(req); err != nil {
		return err
	}
	id, err := numericID(req.VariantID)
	if err != nil {
		return err
	}
	var compareAt *string
	if req.CompareAtPrice != nil {
		value := req.CompareAtPrice.StringFixed(2)
		compareAt = &value
	}
	body := dto.RESTVariantUpdateRequest{Variant: dto.RESTVariantUpdate{
		ID:             id,
		Price:          req.Price.StringFixed(2),
		CompareAtPrice: compareAt,
	}}
	_, err = c.restRequest(ctx, http.MethodPut, fmt.Sprintf("/variants/%d.json", id), nil, body, nil)
	return err
}

// SetAvailable overwrites the available quantity at the sync location.
func (c *RESTClient) SetAvailable(ctx context.Context, req model.VariantUpdateRequest) error {
	if err := validateStockRequest(req); err != nil {
		return err
	}
	itemID, err := numericID(req.InventoryItemID)
	if err != nil {
		return err
	}
	location := strings.TrimSpace(req.LocationID)
	if location == "" {
		if location, err = c.primaryLocationID(ctx); err != nil {
			return err
		}
	}
	locationID, err := numericID(location)
	if err != nil {
		return err
	}
	body := dto.RESTInventorySetRequest{
		LocationID:      locationID,
		InventoryItemID: itemID,
		Available:       req.Available,
	}
	_, err = c.restRequest(ctx, http.MethodPost, "/inventory_levels/set.json", nil, body, nil)
	return err
}

func (c *RESTClient) primaryLocationID(ctx context.Context) (string, error) {
	if id, ok := c.cachedLocation(); ok {
		return fromGID(id), nil
	}
	var data dto.RESTLocationsResponse
	if _, err := c.restRequest(ctx, http.MethodGet, "/locations.json", nil, nil, &data); err != nil {
		return "", err
	}
	locationID := ""
	for _, location := range data.Locations {
		if location.ID != 0 && location.Active {
			locationID = strconv.FormatInt(location.ID, 10)
			break
		}
	}
	if locationID == "" && len(data.Locations) > 0 && data.Locations[0].ID != 0 {
		locationID = strconv.FormatInt(data.Locations[0].ID, 10)
	}
	if locationID == "" {
		return "", errors.New("shopify location not found")
	}
	c.setLocation(locationID)
	c.logDebug(fmt.Sprintf("shopify sync location resolved id=%s", locationID))
	return locationID, nil
}

func numericID(id string) (int64, error) {
	raw := fromGID(id)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("shopify id %q is not numeric", id)
	}
	return value, nil
}

// nextPageInfo extracts the page_info of the rel="next" entry of a Link
// header.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		isNext := false
		for _, param := range segments[1:] {
			if strings.ReplaceAll(strings.TrimSpace(param), " ", "") == `rel="next"` {
				isNext = true
				break
			}
		}
		if !isNext {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		parsed, err := url.Parse(target)
		if err != nil {
			continue
		}
		return parsed.Query().Get("page_info")
	}
	return ""
}
