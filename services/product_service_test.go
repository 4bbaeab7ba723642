package services_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockFeaturedCache struct {
	mu       sync.Mutex
	products []models.Product
	hit      bool
	sets     int
}

func (m *mockFeaturedCache) Get(_ context.Context) ([]models.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products, m.hit, nil
}

func (m *mockFeaturedCache) Set(_ context.Context, products []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	m.hit = true
	m.sets++
	return nil
}

func (m *mockFeaturedCache) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = nil
	m.hit = false
	return nil
}

type mockImageStore struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{uploaded: make(map[string][]byte)}
}

func (m *mockImageStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded[key] = data
	return "https://img.example.com/" + key, nil
}

func (m *mockImageStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockImageStore) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "https://img.example.com/")
}

func newProductFixture() (*mockProductRepo, *mockFeaturedCache, *mockImageStore, services.ProductService) {
	repo := newMockProductRepo()
	cache := &mockFeaturedCache{}
	images := newMockImageStore()
	svc := services.NewProductService(repo, cache, images, zap.NewNop())
	return repo, cache, images, svc
}

func TestProductService_GetFeatured_CacheMissPopulates(t *testing.T) {
	repo, cache, _, svc := newProductFixture()

	featured := seedProduct(repo, "Spotlight", 100)
	featured.IsFeatured = true
	seedProduct(repo, "Ordinary", 10)

	products, svcErr := svc.GetFeaturedProducts(context.Background())
	require.Nil(t, svcErr)
	require.Len(t, products, 1)
	assert.Equal(t, "Spotlight", products[0].Name)
	assert.Equal(t, 1, cache.sets, "miss repopulates the cache")

	// Second read is served from the cache.
	products, svcErr = svc.GetFeaturedProducts(context.Background())
	require.Nil(t, svcErr)
	require.Len(t, products, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestProductService_GetFeatured_NoneFound(t *testing.T) {
	_, _, _, svc := newProductFixture()

	_, svcErr := svc.GetFeaturedProducts(context.Background())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	assert.Equal(t, "No featured products found", svcErr.Message)
}

func TestProductService_ToggleFeatured_RewritesCache(t *testing.T) {
	repo, cache, _, svc := newProductFixture()

	product := seedProduct(repo, "Runner", 50)

	updated, svcErr := svc.ToggleFeaturedProduct(context.Background(), product.ID.Hex())
	require.Nil(t, svcErr)
	assert.True(t, updated.IsFeatured)
	require.Len(t, cache.products, 1, "cache is rewritten on toggle")

	updated, svcErr = svc.ToggleFeaturedProduct(context.Background(), product.ID.Hex())
	require.Nil(t, svcErr)
	assert.False(t, updated.IsFeatured)
	assert.Empty(t, cache.products)
}

func TestProductService_ToggleFeatured_Missing(t *testing.T) {
	_, _, _, svc := newProductFixture()

	_, svcErr := svc.ToggleFeaturedProduct(context.Background(), "not-a-valid-id")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	_, svcErr = svc.ToggleFeaturedProduct(context.Background(), primitive.NewObjectID().Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestProductService_CreateProduct_UploadsImage(t *testing.T) {
	repo, _, images, svc := newProductFixture()

	payload := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	product, svcErr := svc.CreateProduct(context.Background(), &models.CreateProductRequest{
		Name:     "Runner",
		Price:    50,
		Category: "shoes",
		Image:    "data:image/png;base64," + payload,
	})
	require.Nil(t, svcErr)

	key := "products/" + product.ID.Hex()
	assert.Equal(t, []byte("fake-png-bytes"), images.uploaded[key])
	assert.Equal(t, "https://img.example.com/"+key, product.Image)

	stored, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Image, stored.Image)
}

func TestProductService_CreateProduct_BadImage(t *testing.T) {
	_, _, _, svc := newProductFixture()

	_, svcErr := svc.CreateProduct(context.Background(), &models.CreateProductRequest{
		Name:     "Runner",
		Price:    50,
		Category: "shoes",
		Image:    "data:image/png;base64,!!!not-base64!!!",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestProductService_DeleteProduct_RemovesImage(t *testing.T) {
	repo, _, images, svc := newProductFixture()

	payload := base64.StdEncoding.EncodeToString([]byte("img"))
	product, svcErr := svc.CreateProduct(context.Background(), &models.CreateProductRequest{
		Name: "Runner", Price: 50, Category: "shoes",
		Image: "data:image/jpeg;base64," + payload,
	})
	require.Nil(t, svcErr)

	require.Nil(t, svc.DeleteProduct(context.Background(), product.ID.Hex()))

	_, err := repo.FindByID(context.Background(), product.ID)
	assert.Error(t, err)
	assert.Equal(t, []string{"products/" + product.ID.Hex()}, images.deleted)
}

func TestProductService_DeleteProduct_Missing(t *testing.T) {
	repo, _, _, svc := newProductFixture()

	product := seedProduct(repo, "Runner", 50)
	_, err := repo.Delete(context.Background(), product.ID)
	require.NoError(t, err)

	svcErr := svc.DeleteProduct(context.Background(), product.ID.Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
