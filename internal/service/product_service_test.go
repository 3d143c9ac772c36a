package service

import (
	"context"
	"testing"

	"sales-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	svc        *ProductService
	products   *fakeProductRepo
	categories *fakeCategoryRepo
	pub        *recordingPublisher
	cache      *fakeCache
}

func newProductFixture() *productFixture {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	pub := &recordingPublisher{}
	cache := newFakeCache()
	return &productFixture{
		svc:        NewProductService(products, categories, &fakeUowFactory{}, pub, cache),
		products:   products,
		categories: categories,
		pub:        pub,
		cache:      cache,
	}
}

func TestCreateProduct(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")

	res, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:          "Cold Brew",
		SKU:           "CB-001",
		Price:         "4.50",
		Cost:          "1.20",
		StockQuantity: 24,
		CategoryID:    cat.ID(),
	})
	require.NoError(t, err)
	require.True(t, res.IsOK())

	got := res.Value()
	assert.Equal(t, "CB-001", got.SKU)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, 24, got.StockQuantity)
	assert.True(t, got.Active)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, domain.EventTypeProductCreated, f.pub.events[0].EventName())
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")
	mustProduct(t, f.products, "CB-001", "4.50", 24, cat.ID())

	res, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:          "Another Brew",
		SKU:           "CB-001",
		Price:         "5.00",
		Cost:          "1.00",
		StockQuantity: 10,
		CategoryID:    cat.ID(),
	})
	require.NoError(t, err)
	require.False(t, res.IsOK())
	assert.Equal(t, domain.CodeDuplicateKey, res.Failure().Code)
	assert.Empty(t, f.pub.events)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	f := newProductFixture()

	res, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:          "Orphan",
		SKU:           "OR-001",
		Price:         "1.00",
		Cost:          "0.50",
		StockQuantity: 1,
		CategoryID:    uuid.New(),
	})
	require.NoError(t, err)
	require.False(t, res.IsOK())
	assert.Equal(t, domain.CodeNotFound, res.Failure().Code)
}

func TestCreateProductValidation(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")

	cases := []struct {
		name string
		cmd  CreateProductCommand
	}{
		{"missing name", CreateProductCommand{SKU: "X", Price: "1.00", Cost: "0.10", CategoryID: cat.ID()}},
		{"missing sku", CreateProductCommand{Name: "X", Price: "1.00", Cost: "0.10", CategoryID: cat.ID()}},
		{"bad price", CreateProductCommand{Name: "X", SKU: "X", Price: "not-a-number", Cost: "0.10", CategoryID: cat.ID()}},
		{"negative stock", CreateProductCommand{Name: "X", SKU: "X", Price: "1.00", Cost: "0.10", StockQuantity: -1, CategoryID: cat.ID()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.svc.CreateProduct(context.Background(), tc.cmd)
			require.NoError(t, err)
			require.False(t, res.IsOK())
			assert.Equal(t, domain.CodeValidationFailed, res.Failure().Code)
		})
	}
}

func TestGetProductNotFound(t *testing.T) {
	f := newProductFixture()

	res, err := f.svc.GetProduct(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, res.IsOK())
	assert.Equal(t, domain.CodeNotFound, res.Failure().Code)
}

func TestGetProductPopulatesAndServesCache(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")
	p := mustProduct(t, f.products, "CB-001", "4.50", 24, cat.ID())

	// first read fills the cache from the store
	res, err := f.svc.GetProduct(context.Background(), p.ID())
	require.NoError(t, err)
	require.True(t, res.IsOK())
	assert.Equal(t, 1, f.cache.sets)

	// second read is served from the cache even if the store is broken
	f.products.err = assert.AnError
	res, err = f.svc.GetProduct(context.Background(), p.ID())
	require.NoError(t, err)
	require.True(t, res.IsOK())
	assert.Equal(t, "CB-001", res.Value().SKU)
}

func TestAdjustStock(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")
	p := mustProduct(t, f.products, "CB-001", "4.50", 10, cat.ID())

	res, err := f.svc.AdjustStock(context.Background(), p.ID(), AdjustStockCommand{Delta: -4})
	require.NoError(t, err)
	require.True(t, res.IsOK())
	assert.Equal(t, 6, res.Value().StockQuantity)
	assert.Contains(t, f.cache.invalidated, p.ID())
}

func TestAdjustStockInsufficient(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")
	p := mustProduct(t, f.products, "CB-001", "4.50", 3, cat.ID())

	res, err := f.svc.AdjustStock(context.Background(), p.ID(), AdjustStockCommand{Delta: -5})
	require.NoError(t, err)
	require.False(t, res.IsOK())
	assert.Equal(t, domain.CodeInsufficientStock, res.Failure().Code)
	assert.Equal(t, 3, p.StockQuantity(), "a rejected adjustment leaves stock unchanged")
}

func TestAdjustStockZeroDelta(t *testing.T) {
	f := newProductFixture()

	res, err := f.svc.AdjustStock(context.Background(), uuid.New(), AdjustStockCommand{Delta: 0})
	require.NoError(t, err)
	require.False(t, res.IsOK())
	assert.Equal(t, domain.CodeValidationFailed, res.Failure().Code)
}

func TestDeactivateProductHidesFromList(t *testing.T) {
	f := newProductFixture()
	cat := mustCategory(t, f.categories, "Beverages")
	p := mustProduct(t, f.products, "CB-001", "4.50", 10, cat.ID())

	res, err := f.svc.DeactivateProduct(context.Background(), p.ID())
	require.NoError(t, err)
	require.True(t, res.IsOK())
	assert.False(t, res.Value().Active)

	listed, err := f.svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}
