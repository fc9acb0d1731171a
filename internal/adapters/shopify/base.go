package shopify

import (
	"sync"

	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/logging"
)

// clientBase holds what both transports share. The sync location is
// resolved once and cached.
type clientBase struct {
	config     config.ShopifyConfig
	baseURL    string
	httpClient *httpx.Client
	logger     logging.LoggerService
	options    Options

	locationMu sync.Mutex
	locationID string
}

func (c *clientBase) cachedLocation() (string, bool) {
	c.locationMu.Lock()
	defer c.locationMu.Unlock()
	return c.locationID, c.locationID != ""
}

func (c *clientBase) setLocation(id string) {
	c.locationMu.Lock()
	c.locationID = id
	c.locationMu.Unlock()
}
