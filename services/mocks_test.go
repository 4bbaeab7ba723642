package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// duplicateKeyErr satisfies mongo.IsDuplicateKeyError.
var duplicateKeyErr = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
}

// --- Mock user repository ---

type mockUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return duplicateKeyErr
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) GetCartItems(_ context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	items := make([]models.CartItem, len(u.CartItems))
	copy(items, u.CartItems)
	return items, nil
}

func (m *mockUserRepo) IncrementCartItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.CartItems {
		if u.CartItems[i].Product == productID {
			u.CartItems[i].Quantity += quantity
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) PushCartItem(_ context.Context, userID primitive.ObjectID, item models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.CartItems = append(u.CartItems, item)
	return nil
}

func (m *mockUserRepo) SetCartItemQuantity(_ context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.CartItems {
		if u.CartItems[i].Product == productID {
			u.CartItems[i].Quantity = quantity
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) PullCartItem(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kept := u.CartItems[:0]
	for _, item := range u.CartItems {
		if item.Product != productID {
			kept = append(kept, item)
		}
	}
	u.CartItems = kept
	return nil
}

func (m *mockUserRepo) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.CartItems = nil
	return nil
}

// --- Mock product repository ---

type mockProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (m *mockProductRepo) FindAll(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) FindFeatured(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.IsFeatured {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) FindByCategory(_ context.Context, category string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Sample(_ context.Context, size int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if len(out) == size {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) SetFeatured(_ context.Context, id primitive.ObjectID, featured bool) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	p.IsFeatured = featured
	return p, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(m.products, id)
	return p, nil
}

func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

// --- Mock coupon repository ---

type mockCouponRepo struct {
	mu      sync.Mutex
	coupons []*models.Coupon
}

func newMockCouponRepo() *mockCouponRepo {
	return &mockCouponRepo{}
}

func (m *mockCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if coupon.ID.IsZero() {
		coupon.ID = primitive.NewObjectID()
	}
	m.coupons = append(m.coupons, coupon)
	return nil
}

func (m *mockCouponRepo) FindActiveByUser(_ context.Context, userID primitive.ObjectID) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockCouponRepo) FindActiveByCodeAndUser(_ context.Context, code string, userID primitive.ObjectID) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.Code == code && c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockCouponRepo) Deactivate(_ context.Context, code string, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.Code == code && c.UserID == userID {
			c.IsActive = false
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *mockCouponRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.coupons[:0]
	for _, c := range m.coupons {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	m.coupons = kept
	return nil
}

func (m *mockCouponRepo) activeFor(userID primitive.ObjectID) []*models.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Coupon
	for _, c := range m.coupons {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// --- Mock order repository ---

type mockOrderRepo struct {
	mu          sync.Mutex
	orders      map[string]*models.Order // by stripe session id
	createCalls int
	totalSales  int64
	revenue     float64
	daily       map[string]models.DailySales
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*models.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if _, exists := m.orders[order.StripeSessionID]; exists {
		return duplicateKeyErr
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	m.orders[order.StripeSessionID] = order
	return nil
}

func (m *mockOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[sessionID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return o, nil
}

func (m *mockOrderRepo) Totals(_ context.Context) (int64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalSales, m.revenue, nil
}

func (m *mockOrderRepo) DailySales(_ context.Context, _, _ time.Time) (map[string]models.DailySales, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.daily, nil
}

// --- Mock token store ---

type mockTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]string)}
}

func (m *mockTokenStore) Set(_ context.Context, userID, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *mockTokenStore) Get(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

func (m *mockTokenStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

// --- Mock payment gateway ---

type mockGateway struct {
	mu            sync.Mutex
	lastParams    *stripe.CheckoutSessionParams
	sessions      map[string]*stripe.CheckoutSession
	lineItems     map[string][]*stripe.LineItem
	couponCreates int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		sessions:  make(map[string]*stripe.CheckoutSession),
		lineItems: make(map[string][]*stripe.LineItem),
	}
}

func (m *mockGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastParams = params
	session := &stripe.CheckoutSession{
		ID:       "cs_test_" + primitive.NewObjectID().Hex(),
		Metadata: params.Metadata,
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *mockGateway) RetrieveCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &stripe.Error{Code: stripe.ErrorCodeResourceMissing}
	}
	return s, nil
}

func (m *mockGateway) ListLineItems(id string) ([]*stripe.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lineItems[id], nil
}

func (m *mockGateway) CreateOnceCoupon(_ int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.couponCreates++
	return "gw_coupon_once", nil
}
