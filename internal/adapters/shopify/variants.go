package shopify

import (
	"context"
	"fmt"
	"strings"

	"shopify-reconciler/internal/adapters/shopify/dto"
	"shopify-reconciler/internal/domain/model"
)

const (
	maxVariantPageSize = 250

	variantsQuery = `
	query productVariants($first: Int!, $after: String) {
		productVariants(first: $first, after: $after) {
			nodes {
				id sku displayName price compareAtPrice
				product { id title }
				inventoryItem { id tracked }
			}
			pageInfo { hasNextPage endCursor }
		}
	}`

	variantsWithInventoryQuery = `
	query productVariants($first: Int!, $after: String, $locationId: ID!) {
		productVariants(first: $first, after: $after) {
			nodes {
				id sku displayName price compareAtPrice
				product { id title }
				inventoryItem {
					id tracked
					inventoryLevel(locationId: $locationId) {
						id
						quantities(names: ["available"]) { name quantity }
					}
				}
			}
			pageInfo { hasNextPage endCursor }
		}
	}`
)

// FetchVariantPage reads one page of variants after cursor.
func (c *GraphQLClient) FetchVariantPage(ctx context.Context, cursor string, pageSize int) (model.VariantPage, error) {
	variables := map[string]any{
		"first": clampPageSize(pageSize),
	}
	if strings.TrimSpace(cursor) != "" {
		variables["after"] = cursor
	}
	query := variantsQuery
	if c.options.IncludeInventory {
		locationID, err := c.primaryLocationID(ctx)
		if err != nil {
			return model.VariantPage{}, err
		}
		variables["locationId"] = locationID
		query = variantsWithInventoryQuery
	}

	var data dto.ProductVariantsQueryData
	if err := c.graphqlRequest(ctx, "productVariants", query, variables, &data); err != nil {
		return model.VariantPage{}, err
	}

	page := model.VariantPage{
		Variants:   make([]model.RemoteVariant, 0, len(data.ProductVariants.Nodes)),
		HasNext:    data.ProductVariants.PageInfo.HasNextPage,
		NextCursor: data.ProductVariants.PageInfo.EndCursor,
	}
	for _, node := range data.ProductVariants.Nodes {
		variant, err := mapVariantNode(node)
		if err != nil {
			c.logWarning(fmt.Sprintf("shopify variant %s skipped: %v", node.ID, err))
			continue
		}
		page.Variants = append(page.Variants, variant)
	}
	return page, nil
}

func mapVariantNode(node dto.VariantNode) (model.RemoteVariant, error) {
	price, _, err := parseMoney(node.Price)
	if err != nil {
		return model.RemoteVariant{}, err
	}
	compareAt, err := optionalMoney(node.CompareAtPrice)
	if err != nil {
		return model.RemoteVariant{}, err
	}
	variant := model.RemoteVariant{
		VariantID:      strings.TrimSpace(node.ID),
		ProductID:      strings.TrimSpace(node.Product.ID),
		Sku:            node.SKU,
		Price:          price,
		CompareAtPrice: compareAt,
		DisplayName:    node.DisplayName,
		ProductTitle:   node.Product.Title,
	}
	if item := node.InventoryItem; item != nil {
		variant.InventoryItemID = strings.TrimSpace(item.ID)
		variant.Tracked = item.Tracked
		if item.InventoryLevel != nil {
			for _, quantity := range item.InventoryLevel.Quantities {
				if quantity.Name == "available" {
					available := quantity.Quantity
					variant.Available = &available
					break
				}
			}
		}
	}
	return variant, nil
}

func clampPageSize(pageSize int) int {
	if pageSize <= 0 || pageSize > maxVariantPageSize {
		return maxVariantPageSize
	}
	return pageSize
}
