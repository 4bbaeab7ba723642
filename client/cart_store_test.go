package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kevinleven52/Ac.Connect/client"
	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cartServer struct {
	mux   *http.ServeMux
	items []models.CartProduct
	fail  atomic.Bool
}

func newCartServer() *cartServer {
	s := &cartServer{mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		if s.fail.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to add to cart"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.items)
		case http.MethodPost:
			var req struct {
				ProductID string `json:"productId"`
				Quantity  int    `json:"quantity"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			pid, _ := primitive.ObjectIDFromHex(req.ProductID)
			for i := range s.items {
				if s.items[i].ID == pid {
					s.items[i].Quantity += req.Quantity
					writeJSON(w, http.StatusOK, s.items)
					return
				}
			}
			s.items = append(s.items, models.CartProduct{
				Product:  models.Product{ID: pid},
				Quantity: req.Quantity,
			})
			writeJSON(w, http.StatusOK, s.items)
		case http.MethodDelete:
			s.items = nil
			writeJSON(w, http.StatusOK, s.items)
		}
	})
	s.mux.HandleFunc("/api/coupons/validate", func(w http.ResponseWriter, r *http.Request) {
		var req models.ValidateCouponRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "ACconnectGiftABC123" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Coupon not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"code":               req.Code,
			"discountPercentage": 10,
		})
	})
	return s
}

func newCartFixture(t *testing.T) (*cartServer, *client.CartStore) {
	t.Helper()
	backend := newCartServer()
	srv := httptest.NewServer(backend.mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	return backend, client.NewCartStore(c)
}

func product(price float64) models.Product {
	return models.Product{ID: primitive.NewObjectID(), Name: "Runner", Price: price}
}

func TestCartStore_RefreshMirrorsServer(t *testing.T) {
	backend, store := newCartFixture(t)
	backend.items = []models.CartProduct{
		{Product: product(100), Quantity: 2},
		{Product: product(50), Quantity: 1},
	}

	require.NoError(t, store.Refresh(context.Background()))

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(25000), store.Subtotal(), "₦250 in kobo")
}

func TestCartStore_AddToCartOptimistic(t *testing.T) {
	_, store := newCartFixture(t)
	p := product(100)

	require.NoError(t, store.AddToCart(context.Background(), p))
	require.NoError(t, store.AddToCart(context.Background(), p))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(20000), store.Subtotal())
}

func TestCartStore_AddToCartRollsBackOnFailure(t *testing.T) {
	backend, store := newCartFixture(t)
	p := product(100)

	require.NoError(t, store.AddToCart(context.Background(), p))
	backend.fail.Store(true)

	err := store.AddToCart(context.Background(), p)
	require.Error(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity, "failed mutation leaves the mirror untouched")
}

func TestCartStore_TotalsWithCoupon(t *testing.T) {
	backend, store := newCartFixture(t)
	backend.items = []models.CartProduct{{Product: product(1000), Quantity: 1}}
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.ApplyCoupon(context.Background(), "ACconnectGiftABC123"))

	assert.Equal(t, int64(100000), store.Subtotal())
	assert.Equal(t, int64(90000), store.Total(), "10 percent off")

	store.RemoveCoupon()
	assert.Equal(t, int64(100000), store.Total())

	coupon, applied := store.Coupon()
	require.NotNil(t, coupon)
	assert.False(t, applied)
}

func TestCartStore_ApplyCoupon_Invalid(t *testing.T) {
	_, store := newCartFixture(t)

	err := store.ApplyCoupon(context.Background(), "NOSUCH")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCartStore_ClearCart(t *testing.T) {
	_, store := newCartFixture(t)

	require.NoError(t, store.AddToCart(context.Background(), product(100)))
	require.NoError(t, store.ClearCart(context.Background()))
	assert.Empty(t, store.Items())
	assert.Equal(t, int64(0), store.Subtotal())
}
