package dto

import "encoding/json"

// Envelope is the OData collection wrapper. Value stays raw so a missing or
// non-array value can be reported instead of silently read as empty.
type Envelope struct {
	Value    json.RawMessage `json:"value"`
	NextLink string          `json:"@odata.nextLink,omitempty"`
	Count    *int64          `json:"@odata.count,omitempty"`
}

// Record is one entity with its original field names.
type Record map[string]any
