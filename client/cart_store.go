package client

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"

	"github.com/kevinleven52/Ac.Connect/models"
)

// CouponInfo is the coupon as seen by the cart store.
type CouponInfo struct {
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discountPercentage"`
}

// CartStore keeps a local mirror of the server-side cart and the caller's
// coupon. Mutations update the mirror optimistically and resync from the
// server response; on failure the previous state is restored. Safe for
// concurrent use.
type CartStore struct {
	c *Client

	mu            sync.Mutex
	items         []models.CartProduct
	coupon        *CouponInfo
	couponApplied bool
}

// NewCartStore wraps a Client with cart state.
func NewCartStore(c *Client) *CartStore {
	return &CartStore{c: c}
}

// Items returns a copy of the current cart mirror.
func (s *CartStore) Items() []models.CartProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartProduct, len(s.items))
	copy(out, s.items)
	return out
}

// Refresh reloads the cart from the server.
func (s *CartStore) Refresh(ctx context.Context) error {
	var items []models.CartProduct
	if err := s.c.do(ctx, http.MethodGet, "/api/cart", nil, &items); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// AddToCart adds one unit of the product, bumping the mirror immediately.
func (s *CartStore) AddToCart(ctx context.Context, product models.Product) error {
	s.mu.Lock()
	prev := s.snapshotLocked()
	merged := false
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, models.CartProduct{Product: product, Quantity: 1})
	}
	s.mu.Unlock()

	err := s.c.do(ctx, http.MethodPost, "/api/cart", map[string]any{
		"productId": product.ID.Hex(),
		"quantity":  1,
	}, nil)
	if err != nil {
		s.restore(prev)
		return err
	}
	return nil
}

// RemoveFromCart removes the product entirely.
func (s *CartStore) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	prev := s.snapshotLocked()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID.Hex() != productID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.mu.Unlock()

	err := s.c.do(ctx, http.MethodDelete, "/api/cart", map[string]any{
		"productId": productID,
	}, nil)
	if err != nil {
		s.restore(prev)
		return err
	}
	return nil
}

// ClearCart empties the cart server-side and locally.
func (s *CartStore) ClearCart(ctx context.Context) error {
	if err := s.c.do(ctx, http.MethodDelete, "/api/cart", nil, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = nil
	s.coupon = nil
	s.couponApplied = false
	s.mu.Unlock()
	return nil
}

// UpdateQuantity sets the quantity for a cart entry; zero removes it.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity == 0 {
		return s.RemoveFromCart(ctx, productID)
	}

	s.mu.Lock()
	prev := s.snapshotLocked()
	for i := range s.items {
		if s.items[i].ID.Hex() == productID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()

	err := s.c.do(ctx, http.MethodPut, "/api/cart/"+productID, map[string]any{
		"quantity": quantity,
	}, nil)
	if err != nil {
		s.restore(prev)
		return err
	}
	return nil
}

// GetMyCoupon loads the caller's active coupon into the mirror. A missing
// coupon is not an error; the mirror is simply left empty.
func (s *CartStore) GetMyCoupon(ctx context.Context) error {
	var coupon CouponInfo
	err := s.c.do(ctx, http.MethodGet, "/api/coupons", nil, &coupon)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.coupon = &coupon
	s.mu.Unlock()
	return nil
}

// ApplyCoupon validates the code server-side and marks it applied in the
// mirror so totals include the discount.
func (s *CartStore) ApplyCoupon(ctx context.Context, code string) error {
	var coupon CouponInfo
	err := s.c.do(ctx, http.MethodPost, "/api/coupons/validate", models.ValidateCouponRequest{Code: code}, &coupon)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.coupon = &coupon
	s.couponApplied = true
	s.mu.Unlock()
	return nil
}

// RemoveCoupon drops the applied coupon from the mirror only.
func (s *CartStore) RemoveCoupon() {
	s.mu.Lock()
	s.couponApplied = false
	s.mu.Unlock()
}

// Coupon returns the mirrored coupon and whether it is applied to totals.
func (s *CartStore) Coupon() (*CouponInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return nil, false
	}
	c := *s.coupon
	return &c, s.couponApplied
}

// Subtotal is the pre-discount cart total in kobo.
func (s *CartStore) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// Total is the cart total in kobo with the applied coupon's discount
// subtracted.
func (s *CartStore) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := s.subtotalLocked()
	if s.couponApplied && s.coupon != nil {
		discount := subtotal * int64(s.coupon.DiscountPercentage) / 100
		return subtotal - discount
	}
	return subtotal
}

func (s *CartStore) subtotalLocked() int64 {
	var total int64
	for _, it := range s.items {
		total += int64(math.Round(it.Price*100)) * int64(it.Quantity)
	}
	return total
}

func (s *CartStore) snapshotLocked() []models.CartProduct {
	snap := make([]models.CartProduct, len(s.items))
	copy(snap, s.items)
	return snap
}

func (s *CartStore) restore(items []models.CartProduct) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}
