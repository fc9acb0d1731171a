package usecases

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/logging"
)

func newTestCatalog(shop *fakeShop, options CatalogOptions) (*VariantCatalog, *[]time.Duration) {
	catalog := NewVariantCatalog(shop, logging.Nop(), options)
	var sleeps []time.Duration
	catalog.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return catalog, &sleeps
}

func TestFetchAllWalksEveryPage(t *testing.T) {
	t.Parallel()

	shop := &fakeShop{variants: []model.RemoteVariant{
		remoteVariant("1", "00123", "10"),
		remoteVariant("2", "456", "20"),
		remoteVariant("3", "789", "30"),
	}}
	catalog, sleeps := newTestCatalog(shop, CatalogOptions{PageSize: 2, PageDelay: time.Second})

	index, err := catalog.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, index.Len())
	require.Equal(t, 2, shop.pageCalls)
	require.Equal(t, []time.Duration{time.Second}, *sleeps)

	variant, canonical, ok := index.Lookup("123")
	require.True(t, ok)
	require.Equal(t, "123", canonical)
	require.Equal(t, "gid://shopify/ProductVariant/1", variant.VariantID)
}

func TestFetchAllStopsAtPageCeiling(t *testing.T) {
	t.Parallel()

	shop := &fakeShop{variants: []model.RemoteVariant{
		remoteVariant("1", "1", "10"),
		remoteVariant("2", "2", "10"),
		remoteVariant("3", "3", "10"),
	}}
	catalog, _ := newTestCatalog(shop, CatalogOptions{PageSize: 1, MaxPages: 2})

	index, err := catalog.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, index.Len())
	require.Equal(t, 2, shop.pageCalls)
}

func TestFetchAllSkipsUnusableAndKeepsLastDuplicate(t *testing.T) {
	t.Parallel()

	noID := remoteVariant("4", "555", "10")
	noID.VariantID = ""
	shop := &fakeShop{variants: []model.RemoteVariant{
		remoteVariant("1", "00123", "10"),
		remoteVariant("2", "n/a", "10"),
		noID,
		remoteVariant("3", "123", "12"),
	}}
	catalog, _ := newTestCatalog(shop, CatalogOptions{PageSize: 10})

	index, err := catalog.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())
	variant, ok := index.Get("123")
	require.True(t, ok)
	require.Equal(t, "gid://shopify/ProductVariant/3", variant.VariantID)
}

func TestFetchAllCoolsDownOnThrottle(t *testing.T) {
	t.Parallel()

	throttled := &httpx.RetryError{Target: "catalog", Attempts: 4, Err: &httpx.StatusError{StatusCode: http.StatusTooManyRequests}}
	shop := &fakeShop{
		variants: []model.RemoteVariant{remoteVariant("1", "1", "10")},
		pageErrs: []error{throttled, throttled},
	}
	catalog, sleeps := newTestCatalog(shop, CatalogOptions{PageSize: 10, Cooldown: 10 * time.Second, MaxCooldowns: 5})

	index, err := catalog.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())
	require.Equal(t, 3, shop.pageCalls)
	require.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, *sleeps)
}

func TestFetchAllGivesUpAfterCooldowns(t *testing.T) {
	t.Parallel()

	throttled := &httpx.StatusError{StatusCode: http.StatusServiceUnavailable}
	shop := &fakeShop{
		variants: []model.RemoteVariant{remoteVariant("1", "1", "10")},
		pageErrs: []error{throttled, throttled, throttled},
	}
	catalog, sleeps := newTestCatalog(shop, CatalogOptions{PageSize: 10, MaxCooldowns: 2})

	_, err := catalog.FetchAll(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, throttled)
	require.Equal(t, 3, shop.pageCalls)
	require.Len(t, *sleeps, 2)
}

func TestFetchAllTerminalErrorIsImmediate(t *testing.T) {
	t.Parallel()

	denied := &httpx.StatusError{StatusCode: http.StatusUnauthorized}
	shop := &fakeShop{pageErrs: []error{denied}}
	catalog, sleeps := newTestCatalog(shop, CatalogOptions{PageSize: 10})

	_, err := catalog.FetchAll(context.Background())
	var statusErr *httpx.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Equal(t, 1, shop.pageCalls)
	require.Empty(t, *sleeps)
}
