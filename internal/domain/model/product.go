package model

// LocalProduct is a product row from the local ERP. Values stay raw so that
// numeric problems surface as InvalidDataError when the item is decided.
type LocalProduct struct {
	Sku       string
	BasePrice string
}

type InventoryRecord struct {
	Sku         string
	InitialQty  string
	ReceivedQty string
	ShippedQty  string
	RecordedAt  string
}

type DiscountEntry struct {
	Sku        string
	PercentOff float64
}
