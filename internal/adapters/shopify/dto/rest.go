package dto

// REST Admin API shapes. Money fields are decimal strings, compare_at_price
// may be null.

type RESTVariant struct {
	ID                  int64   `json:"id"`
	ProductID           int64   `json:"product_id"`
	Title               string  `json:"title"`
	SKU                 string  `json:"sku"`
	Price               string  `json:"price"`
	CompareAtPrice      *string `json:"compare_at_price"`
	InventoryItemID     int64   `json:"inventory_item_id"`
	InventoryManagement *string `json:"inventory_management"`
	InventoryQuantity   *int    `json:"inventory_quantity"`
}

type RESTProduct struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Variants []RESTVariant `json:"variants"`
}

type RESTProductsResponse struct {
	Products []RESTProduct `json:"products"`
}

type RESTInventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       *int  `json:"available"`
}

type RESTInventoryLevelsResponse struct {
	InventoryLevels []RESTInventoryLevel `json:"inventory_levels"`
}

type RESTLocation struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type RESTLocationsResponse struct {
	Locations []RESTLocation `json:"locations"`
}

type RESTVariantUpdate struct {
	ID             int64   `json:"id"`
	Price          string  `json:"price"`
	CompareAtPrice *string `json:"compare_at_price"`
}

type RESTVariantUpdateRequest struct {
	Variant RESTVariantUpdate `json:"variant"`
}

type RESTInventorySetRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}
