package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/infra/httpx"
)

func TestRESTFetchVariantPage(t *testing.T) {
	t.Parallel()

	var levelQuery atomic.Value
	svc := newTestService(t, config.TransportREST, Options{IncludeInventory: true}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get(accessTokenHeader))
		switch r.URL.Path {
		case "/admin/api/2024-10/products.json":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			assert.Equal(t, "", r.URL.Query().Get("page_info"))
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/admin/api/2024-10/products.json?limit=10&page_info=next123>; rel="next"`, r.Host))
			_, _ = w.Write([]byte(`{"products":[{"id":5,"title":"Widget","variants":[
				{"id":11,"product_id":5,"title":"Default","sku":"00123","price":"100.00","compare_at_price":null,"inventory_item_id":77,"inventory_management":"shopify"},
				{"id":12,"product_id":5,"title":"Large","sku":"124","price":"12.00","compare_at_price":"15.00","inventory_item_id":78,"inventory_management":null}
			]}]}`))
		case "/admin/api/2024-10/locations.json":
			_, _ = w.Write([]byte(`{"locations":[{"id":3,"name":"Main","active":true}]}`))
		case "/admin/api/2024-10/inventory_levels.json":
			levelQuery.Store(r.URL.RawQuery)
			assert.Equal(t, "3", r.URL.Query().Get("location_ids"))
			_, _ = w.Write([]byte(`{"inventory_levels":[{"inventory_item_id":77,"location_id":3,"available":9}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	page, err := svc.FetchVariantPage(context.Background(), "", 10)
	require.NoError(t, err)
	require.True(t, page.HasNext)
	require.Equal(t, "next123", page.NextCursor)
	require.Len(t, page.Variants, 2)

	first := page.Variants[0]
	require.Equal(t, "11", first.VariantID)
	require.Equal(t, "5", first.ProductID)
	require.Equal(t, "77", first.InventoryItemID)
	require.True(t, first.Tracked)
	require.NotNil(t, first.Available)
	require.Equal(t, 9, *first.Available)
	require.Nil(t, first.CompareAtPrice)

	second := page.Variants[1]
	require.False(t, second.Tracked)
	require.Nil(t, second.Available)
	require.Equal(t, "15.00", second.CompareAtPrice.StringFixed(2))
	require.Contains(t, levelQuery.Load().(string), "inventory_item_ids=77%2C78")
}

func TestRESTUpdatePriceAndSetAvailable(t *testing.T) {
	t.Parallel()

	var (
		variantBody map[string]map[string]any
		setBody     map[string]any
	)
	svc := newTestService(t, config.TransportREST, Options{}, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/admin/api/2024-10/variants/11.json":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&variantBody))
			_, _ = w.Write([]byte(`{"variant":{"id":11}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/admin/api/2024-10/locations.json":
			_, _ = w.Write([]byte(`{"locations":[{"id":3,"active":true}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/admin/api/2024-10/inventory_levels/set.json":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&setBody))
			_, _ = w.Write([]byte(`{"inventory_level":{}}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, svc.UpdatePrice(context.Background(), model.VariantUpdateRequest{
		Sku:       "123",
		VariantID: "gid://shopify/ProductVariant/11",
		Price:     decimal.RequireFromString("90"),
	}))
	require.Equal(t, "90.00", variantBody["variant"]["price"])
	require.Contains(t, variantBody["variant"], "compare_at_price")
	require.Nil(t, variantBody["variant"]["compare_at_price"])

	require.NoError(t, svc.SetAvailable(context.Background(), model.VariantUpdateRequest{
		Sku:             "123",
		InventoryItemID: "77",
		Available:       4,
	}))
	require.EqualValues(t, 3, setBody["location_id"])
	require.EqualValues(t, 77, setBody["inventory_item_id"])
	require.EqualValues(t, 4, setBody["available"])
}

func TestRESTValidationErrorIsTerminal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc := newTestService(t, config.TransportREST, Options{}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"price":["must be a number"]}}`))
	})

	err := svc.UpdatePrice(context.Background(), model.VariantUpdateRequest{Sku: "1", VariantID: "11", Price: decimal.RequireFromString("1")})
	require.Error(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, httpx.StatusCode(err))
	require.EqualValues(t, 1, calls.Load())
}

func TestNextPageInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		link string
		want string
	}{
		{name: "empty", link: "", want: ""},
		{name: "next only", link: `<https://s/admin/api/2024-10/products.json?limit=2&page_info=abc>; rel="next"`, want: "abc"},
		{name: "previous and next", link: `<https://s/p.json?page_info=prev>; rel="previous", <https://s/p.json?page_info=nxt>; rel="next"`, want: "nxt"},
		{name: "previous only", link: `<https://s/p.json?page_info=prev>; rel="previous"`, want: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, nextPageInfo(tc.link))
		})
	}
}

func TestParseMoney(t *testing.T) {
	t.Parallel()

	value, ok, err := parseMoney(json.RawMessage(`"19.90"`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "19.90", value.StringFixed(2))

	value, ok, err = parseMoney(json.RawMessage(`{"amount":"5.5","currencyCode":"USD"}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5.50", value.StringFixed(2))

	_, ok, err = parseMoney(json.RawMessage(`null`))
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = parseMoney(json.RawMessage(`"abc"`))
	require.Error(t, err)
}
