package dto

import "encoding/json"

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []any                  `json:"path,omitempty"`
	Extensions map[string]any         `json:"extensions,omitempty"`
	Locations  []GraphQLErrorLocation `json:"locations,omitempty"`
}

type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type ShopifyUserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

type ShopifyPageInfo struct {
	HasNextPage bool   `json:"hasNextPage,omitempty"`
	EndCursor   string `json:"endCursor,omitempty"`
}

type LocationNode struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	IsActive bool   `json:"isActive,omitempty"`
}

type LocationsQueryData struct {
	Locations struct {
		Nodes []LocationNode `json:"nodes,omitempty"`
	} `json:"locations"`
}

type InventoryQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type InventoryLevelNode struct {
	ID         string              `json:"id,omitempty"`
	Quantities []InventoryQuantity `json:"quantities,omitempty"`
}

type InventoryItemNode struct {
	ID             string              `json:"id,omitempty"`
	Tracked        bool                `json:"tracked,omitempty"`
	InventoryLevel *InventoryLevelNode `json:"inventoryLevel,omitempty"`
}

type VariantProductNode struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// VariantNode keeps money as raw JSON strings; Shopify's Money scalar is a
// decimal string and compareAtPrice may be null.
type VariantNode struct {
	ID             string             `json:"id,omitempty"`
	SKU            string             `json:"sku,omitempty"`
	DisplayName    string             `json:"displayName,omitempty"`
	Price          json.RawMessage    `json:"price,omitempty"`
	CompareAtPrice json.RawMessage    `json:"compareAtPrice,omitempty"`
	Product        VariantProductNode `json:"product"`
	InventoryItem  *InventoryItemNode `json:"inventoryItem,omitempty"`
}

type ProductVariantsQueryData struct {
	ProductVariants struct {
		Nodes    []VariantNode   `json:"nodes,omitempty"`
		PageInfo ShopifyPageInfo `json:"pageInfo"`
	} `json:"productVariants"`
}

type ProductVariantsBulkUpdateData struct {
	ProductVariantsBulkUpdate struct {
		ProductVariants []struct {
			ID string `json:"id,omitempty"`
		} `json:"productVariants,omitempty"`
		UserErrors []ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"productVariantsBulkUpdate"`
}

type InventorySetQuantitiesData struct {
	InventorySetQuantities struct {
		UserErrors []ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"inventorySetQuantities"`
}
