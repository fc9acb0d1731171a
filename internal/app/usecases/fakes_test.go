package usecases

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"shopify-reconciler/internal/domain/model"
)

type fakeLocal struct {
	products     []model.LocalProduct
	inventory    []model.InventoryRecord
	productsErr  error
	inventoryErr error
}

func (f *fakeLocal) FetchProducts(context.Context) ([]model.LocalProduct, error) {
	return f.products, f.productsErr
}

func (f *fakeLocal) FetchInventory(context.Context) ([]model.InventoryRecord, error) {
	return f.inventory, f.inventoryErr
}

type fakeDiscounts struct {
	entries []model.DiscountEntry
	err     error
}

func (f *fakeDiscounts) Load(context.Context) ([]model.DiscountEntry, error) {
	return f.entries, f.err
}

// fakeShop serves an in-memory catalog and applies updates to it, so a
// second run observes the first run's writes.
type fakeShop struct {
	mu         sync.Mutex
	variants   []model.RemoteVariant
	priceCalls []model.VariantUpdateRequest
	stockCalls []model.VariantUpdateRequest
	failPrice  map[string]error
	failStock  map[string]error
	pageErrs   []error
	pageCalls  int
}

func (f *fakeShop) FetchVariantPage(_ context.Context, cursor string, pageSize int) (model.VariantPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	if len(f.pageErrs) > 0 {
		err := f.pageErrs[0]
		f.pageErrs = f.pageErrs[1:]
		if err != nil {
			return model.VariantPage{}, err
		}
	}
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := min(start+pageSize, len(f.variants))
	page := model.VariantPage{Variants: append([]model.RemoteVariant(nil), f.variants[start:end]...)}
	if end < len(f.variants) {
		page.HasNext = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeShop) UpdatePrice(_ context.Context, req model.VariantUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls = append(f.priceCalls, req)
	if err := f.failPrice[req.VariantID]; err != nil {
		return err
	}
	for i := range f.variants {
		if f.variants[i].VariantID == req.VariantID {
			f.variants[i].Price = req.Price
			f.variants[i].CompareAtPrice = nil
			if req.CompareAtPrice != nil {
				compareAt := *req.CompareAtPrice
				f.variants[i].CompareAtPrice = &compareAt
			}
		}
	}
	return nil
}

func (f *fakeShop) SetAvailable(_ context.Context, req model.VariantUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stockCalls = append(f.stockCalls, req)
	if err := f.failStock[req.VariantID]; err != nil {
		return err
	}
	for i := range f.variants {
		if f.variants[i].InventoryItemID == req.InventoryItemID {
			available := req.Available
			f.variants[i].Available = &available
		}
	}
	return nil
}

func (f *fakeShop) variant(id string) model.RemoteVariant {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.variants {
		if v.VariantID == id {
			return v
		}
	}
	return model.RemoteVariant{}
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func moneyPtr(value string) *decimal.Decimal {
	d := money(value)
	return &d
}

func intPtr(value int) *int {
	return &value
}

func remoteVariant(id, sku, price string) model.RemoteVariant {
	return model.RemoteVariant{
		VariantID:       "gid://shopify/ProductVariant/" + id,
		ProductID:       "gid://shopify/Product/" + id,
		Sku:             sku,
		Price:           money(price),
		InventoryItemID: "gid://shopify/InventoryItem/" + id,
		Tracked:         true,
		Available:       intPtr(0),
	}
}

// blockingShop holds every price write until its context is cancelled.
type blockingShop struct {
	*fakeShop
	started chan struct{}
	once    sync.Once
}

func (b *blockingShop) UpdatePrice(ctx context.Context, _ model.VariantUpdateRequest) error {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return ctx.Err()
}
