package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/logging"
)

const accessTokenHeader = "X-Shopify-Access-Token"

// Service is everything the reconciler needs from Shopify, independent of
// the transport.
type Service interface {
	FetchVariantPage(ctx context.Context, cursor string, pageSize int) (model.VariantPage, error)
	UpdatePrice(ctx context.Context, req model.VariantUpdateRequest) error
	SetAvailable(ctx context.Context, req model.VariantUpdateRequest) error
}

type Options struct {
	// IncludeInventory makes catalog pages carry inventory levels at the
	// sync location. Price-only runs leave it off and never resolve a location.
	IncludeInventory bool
}

// NewClient returns the adapter for cfg.Transport.
func NewClient(cfg config.ShopifyConfig, httpClient *httpx.Client, logger logging.LoggerService, opts Options) (Service, error) {
	if httpClient == nil {
		return nil, errors.New("shopify http client is nil")
	}
	base, err := adminBaseURL(cfg)
	if err != nil {
		return nil, err
	}
	common := &clientBase{
		config:     cfg,
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger,
		options:    opts,
		locationID: strings.TrimSpace(cfg.LocationID),
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", config.TransportGraphQL:
		return &GraphQLClient{clientBase: common}, nil
	case config.TransportREST:
		return &RESTClient{clientBase: common}, nil
	default:
		return nil, fmt.Errorf("unknown shopify transport %q", cfg.Transport)
	}
}

func adminBaseURL(cfg config.ShopifyConfig) (string, error) {
	domain := strings.TrimSpace(cfg.ShopDomain)
	if domain == "" {
		return "", errors.New("shopify shop domain is empty")
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	domain = strings.TrimRight(domain, "/")
	if strings.TrimSpace(cfg.APIVer) == "" {
		return "", errors.New("shopify api version is empty")
	}
	return domain + "/admin/api/" + strings.TrimSpace(cfg.APIVer), nil
}

func (c *clientBase) headers() map[string][]string {
	return map[string][]string{
		"Content-Type":    {"application/json"},
		"Accept":          {"application/json"},
		accessTokenHeader: {c.config.Token},
	}
}

func (c *clientBase) logWarning(message string) {
	if c.logger != nil {
		c.logger.LogWarning(message)
	}
}

func (c *clientBase) logDebug(message string) {
	if c.logger != nil {
		c.logger.LogDebug(message)
	}
}

// toGID turns a numeric id into a Shopify global id; gids pass through.
func toGID(kind, id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("gid://shopify/%s/%s", kind, id)
}

// fromGID returns the numeric tail of a global id.
func fromGID(id string) string {
	id = strings.TrimSpace(id)
	if idx := strings.LastIndex(id, "/"); idx >= 0 && strings.HasPrefix(id, "gid://") {
		id = id[idx+1:]
	}
	if idx := strings.Index(id, "?"); idx >= 0 {
		id = id[:idx]
	}
	return id
}
