package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopify-reconciler/internal/adapters/shopify/dto"
	"shopify-reconciler/internal/domain/model"
)

const inventorySetQuantitiesMutation = `
	mutation inventorySetQuantities($input: InventorySetQuantitiesInput!) {
		inventorySetQuantities(input: $input) {
			userErrors { field message code }
		}
	}`

// SetAvailable overwrites the available quantity at the sync location.
func (c *GraphQLClient) SetAvailable(ctx context.Context, req model.VariantUpdateRequest) error {
	if err := validateStockRequest(req); err != nil {
		return err
	}
	locationID := strings.TrimSpace(req.LocationID)
	if locationID == "" {
		var err error
		if locationID, err = c.primaryLocationID(ctx); err != nil {
			return err
		}
	}

	var data dto.InventorySetQuantitiesData
	if err := c.graphqlRequest(ctx, "inventorySetQuantities", inventorySetQuantitiesMutation, map[string]any{
		"input": map[string]any{
			"name":                  "available",
			"reason":                "correction",
			"ignoreCompareQuantity": true,
			"quantities": []map[string]any{{
				"inventoryItemId": toGID("InventoryItem", req.InventoryItemID),
				"locationId":      toGID("Location", locationID),
				"quantity":        req.Available,
			}},
		},
	}, &data); err != nil {
		return err
	}
	return userErrorsToDetailedError("inventorySetQuantities", data.InventorySetQuantities.UserErrors)
}

func validateStockRequest(req model.VariantUpdateRequest) error {
	if strings.TrimSpace(req.InventoryItemID) == "" {
		return errors.New("shopify inventory item id is required for sku " + req.Sku)
	}
	if req.Available < 0 {
		return fmt.Errorf("shopify stock quantity must be non-negative sku=%s", req.Sku)
	}
	return nil
}

// primaryLocationID returns the configured location, or the first active
// one on the shop.
func (c *GraphQLClient) primaryLocationID(ctx context.Context) (string, error) {
	if id, ok := c.cachedLocation(); ok {
		return toGID("Location", id), nil
	}

	query := `
	query locations($first: Int!) {
		locations(first: $first) {
			nodes { id name isActive }
		}
	}`

	var data dto.LocationsQueryData
	if err := c.graphqlRequest(ctx, "locations", query, map[string]any{"first": 50}, &data); err != nil {
		return "", err
	}
	locationID := ""
	for _, location := range data.Locations.Nodes {
		if location.ID == "" {
			continue
		}
		if location.IsActive {
			locationID = location.ID
			break
		}
	}
	if locationID == "" && len(data.Locations.Nodes) > 0 {
		locationID = data.Locations.Nodes[0].ID
	}
	if locationID == "" {
		return "", errors.New("shopify location not found")
	}

	c.setLocation(locationID)
	c.logDebug(fmt.Sprintf("shopify sync location resolved id=%s", locationID))
	return locationID, nil
}
