package shopify

import (
	"context"
	"errors"
	"strings"

	"shopify-reconciler/internal/adapters/shopify/dto"
	"shopify-reconciler/internal/domain/model"
)

const variantsBulkUpdateMutation = `
	mutation productVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
		productVariantsBulkUpdate(productId: $productId, variants: $variants) {
			productVariants { id }
			userErrors { field message code }
		}
	}`

// UpdatePrice writes price and compare-at price for one variant. A nil
// CompareAtPrice clears the field.
func (c *GraphQLClient) UpdatePrice(ctx context.Context, req model.VariantUpdateRequest) error {
	if err := validatePriceRequest(req); err != nil {
		return err
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return errors.New("shopify product id is required for sku " + req.Sku)
	}

	variables := map[string]any{
		"productId": toGID("Product", productID),
		"variants": []map[string]any{{
			"id":             toGID("ProductVariant", req.VariantID),
			"price":          req.Price.StringFixed(2),
			"compareAtPrice": moneyVariable(req.CompareAtPrice),
		}},
	}
	var data dto.ProductVariantsBulkUpdateData
	if err := c.graphqlRequest(ctx, "productVariantsBulkUpdate", variantsBulkUpdateMutation, variables, &data); err != nil {
		return err
	}
	return userErrorsToDetailedError("productVariantsBulkUpdate", data.ProductVariantsBulkUpdate.UserErrors)
}

func validatePriceRequest(req model.VariantUpdateRequest) error {
	if strings.TrimSpace(req.VariantID) == "" {
		return errors.New("shopify variant id is required for sku " + req.Sku)
	}
	if req.Price.IsNegative() {
		return errors.New("shopify price must be non-negative for sku " + req.Sku)
	}
	return nil
}
