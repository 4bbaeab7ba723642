package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ImageStore is the asset-hosting surface the catalog depends on: upload an
// image under a key, get back a public URL, delete it again later.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

// ProductService owns the catalog and its featured-products cache.
type ProductService interface {
	GetAllProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetFeaturedProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetRecommendedProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id string) *ServiceError
	ToggleFeaturedProduct(ctx context.Context, id string) (*models.Product, *ServiceError)
}

type productServiceImpl struct {
	repo   repository.ProductRepository
	cache  repository.FeaturedCache
	images ImageStore
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repository.ProductRepository, cache repository.FeaturedCache, images ImageStore, logger *zap.Logger) ProductService {
	return &productServiceImpl{repo: repo, cache: cache, images: images, logger: logger}
}

func (s *productServiceImpl) GetAllProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, internal("Failed to list products")
	}
	return products, nil
}

// GetFeaturedProducts serves from the cache when possible and falls through
// to the catalog on a miss, repopulating the cache.
func (s *productServiceImpl) GetFeaturedProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	cached, hit, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("Featured cache read failed, falling back to catalog", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	products, err := s.repo.FindFeatured(ctx)
	if err != nil {
		s.logger.Error("Failed to load featured products", zap.Error(err))
		return nil, internal("Failed to load featured products")
	}
	if len(products) == 0 {
		return nil, notFound("No featured products found")
	}

	if err := s.cache.Set(ctx, products); err != nil {
		s.logger.Warn("Failed to populate featured cache", zap.Error(err))
	}
	return products, nil
}

// GetRecommendedProducts returns a random sample of four products.
func (s *productServiceImpl) GetRecommendedProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.repo.Sample(ctx, 4)
	if err != nil {
		s.logger.Error("Failed to sample products", zap.Error(err))
		return nil, internal("Failed to load recommended products")
	}
	return products, nil
}

func (s *productServiceImpl) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, *ServiceError) {
	products, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		s.logger.Error("Failed to list products by category", zap.String("category", category), zap.Error(err))
		return nil, internal("Failed to list products")
	}
	return products, nil
}

// CreateProduct persists a catalog entry, uploading its image first when one
// was supplied as a base64 data URL.
func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	product := &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}

	if req.Image != "" {
		data, contentType, err := decodeImageDataURL(req.Image)
		if err != nil {
			return nil, badRequest("Invalid image data")
		}
		key := fmt.Sprintf("products/%s", product.ID.Hex())
		url, err := s.images.Upload(ctx, key, data, contentType)
		if err != nil {
			s.logger.Error("Failed to upload product image", zap.Error(err))
			return nil, internal("Failed to upload product image")
		}
		product.Image = url
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, internal("Failed to create product")
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.Hex()), zap.String("name", product.Name))
	return product, nil
}

// DeleteProduct removes a product and its hosted image.
func (s *productServiceImpl) DeleteProduct(ctx context.Context, id string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return badRequest("Invalid product id")
	}

	product, err := s.repo.Delete(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound("Product not found")
		}
		s.logger.Error("Failed to delete product", zap.Error(err))
		return internal("Failed to delete product")
	}

	if product.Image != "" {
		if key := s.images.KeyFromURL(product.Image); key != "" {
			if err := s.images.Delete(ctx, key); err != nil {
				// The catalog entry is already gone; an orphaned image is a
				// cleanup problem, not a request failure.
				s.logger.Warn("Failed to delete product image", zap.String("key", key), zap.Error(err))
			}
		}
	}

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// ToggleFeaturedProduct flips the featured flag and rewrites the featured
// cache so readers never see a stale flag.
func (s *productServiceImpl) ToggleFeaturedProduct(ctx context.Context, id string) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, badRequest("Invalid product id")
	}

	product, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to load product", zap.Error(err))
		return nil, internal("Failed to update product")
	}

	updated, err := s.repo.SetFeatured(ctx, oid, !product.IsFeatured)
	if err != nil {
		s.logger.Error("Failed to toggle featured flag", zap.Error(err))
		return nil, internal("Failed to update product")
	}

	s.refreshFeaturedCache(ctx)
	return updated, nil
}

func (s *productServiceImpl) refreshFeaturedCache(ctx context.Context) {
	products, err := s.repo.FindFeatured(ctx)
	if err != nil {
		s.logger.Warn("Failed to rebuild featured cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, products); err != nil {
		s.logger.Warn("Failed to write featured cache", zap.Error(err))
	}
}

// decodeImageDataURL splits a "data:<type>;base64,<payload>" image into its
// bytes and content type. Bare base64 is accepted as image/jpeg.
func decodeImageDataURL(dataURL string) ([]byte, string, error) {
	contentType := "image/jpeg"
	payload := dataURL

	if strings.HasPrefix(dataURL, "data:") {
		meta, rest, ok := strings.Cut(dataURL, ",")
		if !ok {
			return nil, "", fmt.Errorf("malformed data URL")
		}
		payload = rest
		meta = strings.TrimPrefix(meta, "data:")
		if ct, _, ok := strings.Cut(meta, ";"); ok && ct != "" {
			contentType = ct
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
