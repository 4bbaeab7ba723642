package services

import (
	"context"
	"errors"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CartService mutates the cart embedded in the user document. All writes are
// field-level atomic updates rather than read-modify-write of the whole user.
type CartService interface {
	GetCartProducts(ctx context.Context, userID primitive.ObjectID) ([]models.CartProduct, *ServiceError)
	AddToCart(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) ([]models.CartItem, *ServiceError)
	RemoveFromCart(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.CartItem, *ServiceError)
	UpdateQuantity(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) ([]models.CartItem, *ServiceError)
}

type cartServiceImpl struct {
	users    repository.UserRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(users repository.UserRepository, products repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{users: users, products: products, logger: logger}
}

// GetCartProducts resolves cart entries against the current catalog. Entries
// whose product has been deleted are dropped from the view.
func (s *cartServiceImpl) GetCartProducts(ctx context.Context, userID primitive.ObjectID) ([]models.CartProduct, *ServiceError) {
	items, err := s.users.GetCartItems(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("User not found")
		}
		s.logger.Error("Failed to load cart", zap.Error(err))
		return nil, internal("Failed to load cart")
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	quantities := make(map[primitive.ObjectID]int, len(items))
	for _, item := range items {
		ids = append(ids, item.Product)
		quantities[item.Product] = item.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to resolve cart products", zap.Error(err))
		return nil, internal("Failed to load cart")
	}

	view := make([]models.CartProduct, 0, len(products))
	for _, product := range products {
		view = append(view, models.CartProduct{
			Product:  product,
			Quantity: quantities[product.ID],
		})
	}
	return view, nil
}

// AddToCart merges quantity into an existing entry or appends a new one.
// Invalid quantities normalize to 1.
func (s *cartServiceImpl) AddToCart(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) ([]models.CartItem, *ServiceError) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, badRequest("Invalid productId")
	}
	if quantity <= 0 {
		quantity = 1
	}

	matched, err := s.users.IncrementCartItem(ctx, userID, pid, quantity)
	if err != nil {
		s.logger.Error("Failed to update cart item", zap.Error(err))
		return nil, internal("Failed to add to cart")
	}
	if !matched {
		err = s.users.PushCartItem(ctx, userID, models.CartItem{Product: pid, Quantity: quantity})
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("User not found")
		}
		if err != nil {
			s.logger.Error("Failed to append cart item", zap.Error(err))
			return nil, internal("Failed to add to cart")
		}
	}

	return s.cartItems(ctx, userID)
}

// RemoveFromCart removes one entry, or clears the whole cart when productID
// is empty.
func (s *cartServiceImpl) RemoveFromCart(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.CartItem, *ServiceError) {
	if productID == "" {
		if err := s.users.ClearCart(ctx, userID); err != nil {
			s.logger.Error("Failed to clear cart", zap.Error(err))
			return nil, internal("Failed to remove from cart")
		}
		return s.cartItems(ctx, userID)
	}

	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, badRequest("Invalid productId")
	}
	if err := s.users.PullCartItem(ctx, userID, pid); err != nil {
		s.logger.Error("Failed to remove cart item", zap.Error(err))
		return nil, internal("Failed to remove from cart")
	}
	return s.cartItems(ctx, userID)
}

// UpdateQuantity sets an entry's quantity; zero removes the entry. A missing
// entry is NotFound.
func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) ([]models.CartItem, *ServiceError) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, badRequest("Invalid productId")
	}
	if quantity < 0 {
		return nil, badRequest("Quantity cannot be negative")
	}

	if quantity == 0 {
		items, svcErr := s.cartItems(ctx, userID)
		if svcErr != nil {
			return nil, svcErr
		}
		if !containsProduct(items, pid) {
			return nil, notFound("Item not found in cart")
		}
		if err := s.users.PullCartItem(ctx, userID, pid); err != nil {
			s.logger.Error("Failed to remove cart item", zap.Error(err))
			return nil, internal("Failed to update cart")
		}
		return s.cartItems(ctx, userID)
	}

	matched, err := s.users.SetCartItemQuantity(ctx, userID, pid, quantity)
	if err != nil {
		s.logger.Error("Failed to set cart quantity", zap.Error(err))
		return nil, internal("Failed to update cart")
	}
	if !matched {
		return nil, notFound("Item not found in cart")
	}
	return s.cartItems(ctx, userID)
}

func (s *cartServiceImpl) cartItems(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, *ServiceError) {
	items, err := s.users.GetCartItems(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("User not found")
		}
		s.logger.Error("Failed to load cart", zap.Error(err))
		return nil, internal("Failed to load cart")
	}
	return items, nil
}

func containsProduct(items []models.CartItem, pid primitive.ObjectID) bool {
	for _, item := range items {
		if item.Product == pid {
			return true
		}
	}
	return false
}
