package usecases

import (
	"context"

	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/domain/sku"
)

// VariantPager reads the remote catalog one cursor page at a time.
type VariantPager interface {
	FetchVariantPage(ctx context.Context, cursor string, pageSize int) (model.VariantPage, error)
}

// VariantUpdater writes one variant. Both calls must be safe to repeat.
type VariantUpdater interface {
	UpdatePrice(ctx context.Context, req model.VariantUpdateRequest) error
	SetAvailable(ctx context.Context, req model.VariantUpdateRequest) error
}

// LocalSource is the ERP side, either the OData API or its database.
type LocalSource interface {
	FetchProducts(ctx context.Context) ([]model.LocalProduct, error)
	FetchInventory(ctx context.Context) ([]model.InventoryRecord, error)
}

type DiscountSource interface {
	Load(ctx context.Context) ([]model.DiscountEntry, error)
}

// CatalogFetcher returns the whole remote catalog keyed by normalized SKU.
type CatalogFetcher interface {
	FetchAll(ctx context.Context) (*sku.Index[model.RemoteVariant], error)
}
