package service

import (
	"context"
	"time"

	"sales-service/internal/domain"
	"sales-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductCommand creates a catalog product. Monetary amounts travel as
// decimal strings to avoid float rounding on the wire.
type CreateProductCommand struct {
	Name          string    `json:"name" validate:"required"`
	SKU           string    `json:"sku" validate:"required,max=50"`
	Description   string    `json:"description"`
	Price         string    `json:"price" validate:"required"`
	Cost          string    `json:"cost" validate:"required"`
	StockQuantity int       `json:"stock_quantity" validate:"gte=0"`
	CategoryID    uuid.UUID `json:"category_id" validate:"required"`
}

// UpdateProductCommand edits the descriptive fields of a product.
type UpdateProductCommand struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Price       string    `json:"price" validate:"required"`
	Cost        string    `json:"cost" validate:"required"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

// AdjustStockCommand applies a signed delta to a product's stock. A zero
// delta is rejected rather than treated as a no-op.
type AdjustStockCommand struct {
	Delta int `json:"delta"`
}

// ProductResponse is the read model returned to transport and cached in redis.
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID(),
		Name:          p.Name(),
		SKU:           p.SKU(),
		Description:   p.Description(),
		Price:         p.Price(),
		Cost:          p.Cost(),
		StockQuantity: p.StockQuantity(),
		CategoryID:    p.CategoryID(),
		Active:        p.Active(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

// ProductService owns the catalog use cases.
type ProductService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	uowFactory domain.UnitOfWorkFactory
	publisher  domain.EventPublisher
	cache      ProductCache
	logger     *zap.Logger
}

// NewProductService creates a product service. cache may be nil.
func NewProductService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	uowFactory domain.UnitOfWorkFactory,
	publisher domain.EventPublisher,
	cache ProductCache,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		uowFactory: uowFactory,
		publisher:  publisher,
		cache:      cache,
		logger:     util.GetLogger(),
	}
}

// CreateProduct validates the command, enforces SKU uniqueness and category
// existence, and commits the new product.
func (s *ProductService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (domain.Result[ProductResponse], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[ProductResponse](err), nil
	}
	price, err := parseAmount("price", cmd.Price)
	if err != nil {
		return domain.Failf[ProductResponse](domain.CodeValidationFailed, "%s", err.Error()), nil
	}
	cost, err := parseAmount("cost", cmd.Cost)
	if err != nil {
		return domain.Failf[ProductResponse](domain.CodeValidationFailed, "%s", err.Error()), nil
	}

	existing, err := s.products.GetBySKU(ctx, cmd.SKU)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if existing != nil {
		return domain.Failf[ProductResponse](domain.CodeDuplicateKey, "sku %s already exists", cmd.SKU), nil
	}

	category, err := s.categories.GetByID(ctx, cmd.CategoryID)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if category == nil {
		return domain.Failf[ProductResponse](domain.CodeNotFound, "category %s not found", cmd.CategoryID), nil
	}

	res := domain.NewProduct(cmd.Name, cmd.SKU, cmd.Description, price, cost, cmd.StockQuantity, cmd.CategoryID)
	if !res.IsOK() {
		return domain.Fail[ProductResponse](res.Failure()), nil
	}
	product := res.Value()

	uow := s.uowFactory.New()
	s.products.Add(uow, product)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[ProductResponse]{}, err
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ID().String()),
		zap.String("sku", product.SKU()))
	return domain.OK(toProductResponse(product)), nil
}

// GetProduct reads a product, preferring the cache.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (domain.Result[ProductResponse], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.GetProduct")
	defer span.End()

	if s.cache != nil {
		var cached ProductResponse
		ok, err := s.cache.GetProduct(ctx, id, &cached)
		if err != nil {
			s.logger.Warn("Product cache read failed", zap.Error(err))
		} else if ok {
			return domain.OK(cached), nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if product == nil {
		return domain.Failf[ProductResponse](domain.CodeNotFound, "product %s not found", id), nil
	}

	resp := toProductResponse(product)
	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, id, resp); err != nil {
			s.logger.Warn("Product cache write failed", zap.Error(err))
		}
	}
	return domain.OK(resp), nil
}

// ListProducts returns the active catalog ordered by name.
func (s *ProductService) ListProducts(ctx context.Context) ([]ProductResponse, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	products, err := s.products.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// UpdateProduct edits a product's descriptive fields.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, cmd UpdateProductCommand) (domain.Result[ProductResponse], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[ProductResponse](err), nil
	}
	price, err := parseAmount("price", cmd.Price)
	if err != nil {
		return domain.Failf[ProductResponse](domain.CodeValidationFailed, "%s", err.Error()), nil
	}
	cost, err := parseAmount("cost", cmd.Cost)
	if err != nil {
		return domain.Failf[ProductResponse](domain.CodeValidationFailed, "%s", err.Error()), nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if product == nil {
		return domain.Failf[ProductResponse](domain.CodeNotFound, "product %s not found", id), nil
	}

	category, err := s.categories.GetByID(ctx, cmd.CategoryID)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if category == nil {
		return domain.Failf[ProductResponse](domain.CodeNotFound, "category %s not found", cmd.CategoryID), nil
	}

	if res := product.UpdateDetails(cmd.Name, cmd.Description, price, cost, cmd.CategoryID); !res.IsOK() {
		return domain.Fail[ProductResponse](res.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.products.Update(uow, product)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[ProductResponse]{}, err
	}

	s.invalidateCache(ctx, id)
	return domain.OK(toProductResponse(product)), nil
}

// AdjustStock applies a signed stock delta through the aggregate guard.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, cmd AdjustStockCommand) (domain.Result[ProductResponse], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.AdjustStock")
	defer span.End()

	if cmd.Delta == 0 {
		return domain.Failf[ProductResponse](domain.CodeValidationFailed, "delta must not be zero"), nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if product == nil {
		return domain.Failf[ProductResponse](domain.CodeNotFound, "product %s not found", id), nil
	}

	if res := product.AdjustStock(cmd.Delta); !res.IsOK() {
		util.StockAdjustmentsTotal.WithLabelValues("rejected").Inc()
		return domain.Fail[ProductResponse](res.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.products.Update(uow, product)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[ProductResponse]{}, err
	}

	util.StockAdjustmentsTotal.WithLabelValues("applied").Inc()
	s.invalidateCache(ctx, id)
	return domain.OK(toProductResponse(product)), nil
}

// ActivateProduct returns the product to the active catalog. Idempotent.
func (s *ProductService) ActivateProduct(ctx context.Context, id uuid.UUID) (domain.Result[ProductResponse], error) {
	return s.setActive(ctx, id, true)
}

// DeactivateProduct hides the product from the active catalog. Idempotent.
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) (domain.Result[ProductResponse], error) {
	return s.setActive(ctx, id, false)
}

func (s *ProductService) setActive(ctx context.Context, id uuid.UUID, active bool) (domain.Result[ProductResponse], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.SetActive")
	defer span.End()

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Result[ProductResponse]{}, err
	}
	if product == nil {
		return domain.Failf[ProductResponse](domain.CodeNotFound, "product %s not found", id), nil
	}

	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}

	uow := s.uowFactory.New()
	s.products.Update(uow, product)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[ProductResponse]{}, err
	}

	s.invalidateCache(ctx, id)
	return domain.OK(toProductResponse(product)), nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidation failed",
			zap.String("product_id", id.String()), zap.Error(err))
	}
}
