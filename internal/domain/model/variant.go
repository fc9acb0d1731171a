package model

import "github.com/shopspring/decimal"

// RemoteVariant is the Shopify side of a match. Available is nil when the
// inventory level at the sync location could not be read.
type RemoteVariant struct {
	VariantID       string
	ProductID       string
	Sku             string
	Price           decimal.Decimal
	CompareAtPrice  *decimal.Decimal
	InventoryItemID string
	Tracked         bool
	Available       *int
	DisplayName     string
	ProductTitle    string
}

// VariantUpdateRequest is the transport independent update for one variant.
// Adapters translate it to REST or GraphQL field names.
type VariantUpdateRequest struct {
	Sku             string
	VariantID       string
	ProductID       string
	InventoryItemID string
	LocationID      string
	Price           decimal.Decimal
	CompareAtPrice  *decimal.Decimal
	Available       int
}

// VariantPage is one cursor page of the remote catalog.
type VariantPage struct {
	Variants   []RemoteVariant
	NextCursor string
	HasNext    bool
}
