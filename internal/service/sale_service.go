package service

import (
	"context"
	"time"

	"sales-service/internal/domain"
	"sales-service/internal/mailer"
	"sales-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateSaleCommand opens a pending sale, optionally with initial lines.
// CustomerID is nil for an anonymous walk-in sale.
type CreateSaleCommand struct {
	CustomerID    *uuid.UUID        `json:"customer_id"`
	PaymentMethod string            `json:"payment_method" validate:"required,max=50"`
	Items         []SaleItemCommand `json:"items" validate:"dive"`
}

// SaleItemCommand adds a product line to a sale. Name and price are
// snapshotted from the catalog at add time.
type SaleItemCommand struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// ApplyDiscountCommand sets the absolute discount on a pending sale.
type ApplyDiscountCommand struct {
	Amount string `json:"amount" validate:"required"`
}

// SaleItemResponse is the read model for one sale line.
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// SaleResponse is the read model for a sale with derived totals.
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	PaymentMethod  string             `json:"payment_method"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Status         domain.SaleStatus  `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

func toSaleResponse(s *domain.Sale) SaleResponse {
	items := s.Items()
	respItems := make([]SaleItemResponse, 0, len(items))
	for _, item := range items {
		respItems = append(respItems, SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice(),
		})
	}
	return SaleResponse{
		ID:             s.ID(),
		CustomerID:     s.CustomerID(),
		PaymentMethod:  s.PaymentMethod(),
		Items:          respItems,
		Subtotal:       s.Subtotal(),
		TaxAmount:      s.TaxAmount(),
		DiscountAmount: s.DiscountAmount(),
		TotalAmount:    s.TotalAmount(),
		Status:         s.Status(),
		CreatedAt:      s.CreatedAt(),
		CompletedAt:    s.CompletedAt(),
	}
}

// SaleService owns the sale lifecycle use cases. Completing a sale deducts
// product stock in the same unit of work that persists the status change, so
// a sale never completes against stock it cannot take.
type SaleService struct {
	sales      domain.SaleRepository
	products   domain.ProductRepository
	customers  domain.CustomerRepository
	uowFactory domain.UnitOfWorkFactory
	publisher  domain.EventPublisher
	mail       mailer.Sender
	cache      ProductCache
	logger     *zap.Logger
}

// NewSaleService creates a sale service. mail and cache may be nil.
func NewSaleService(
	sales domain.SaleRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	uowFactory domain.UnitOfWorkFactory,
	publisher domain.EventPublisher,
	mail mailer.Sender,
	cache ProductCache,
) *SaleService {
	return &SaleService{
		sales:      sales,
		products:   products,
		customers:  customers,
		uowFactory: uowFactory,
		publisher:  publisher,
		mail:       mail,
		cache:      cache,
		logger:     util.GetLogger(),
	}
}

// CreateSale opens a pending sale. When the command carries a customer the
// customer must exist and be active; initial lines are snapshotted from the
// catalog the same way AddItem snapshots them.
func (s *SaleService) CreateSale(ctx context.Context, cmd CreateSaleCommand) (domain.Result[SaleResponse], error) {
	ctx, span := util.StartSpan(ctx, "SaleService.CreateSale")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[SaleResponse](err), nil
	}

	if cmd.CustomerID != nil {
		customer, err := s.customers.GetByID(ctx, *cmd.CustomerID)
		if err != nil {
			return domain.Result[SaleResponse]{}, err
		}
		if customer == nil {
			return domain.Failf[SaleResponse](domain.CodeNotFound, "customer %s not found", *cmd.CustomerID), nil
		}
	}

	res := domain.NewSale(cmd.CustomerID, cmd.PaymentMethod)
	if !res.IsOK() {
		return domain.Fail[SaleResponse](res.Failure()), nil
	}
	sale := res.Value()

	for _, item := range cmd.Items {
		product, failure, err := s.loadSellableProduct(ctx, item.ProductID)
		if err != nil {
			return domain.Result[SaleResponse]{}, err
		}
		if failure != nil {
			return domain.Fail[SaleResponse](failure), nil
		}
		if r := sale.AddItem(product.ID(), product.Name(), product.Price(), item.Quantity); !r.IsOK() {
			return domain.Fail[SaleResponse](r.Failure()), nil
		}
	}

	uow := s.uowFactory.New()
	s.sales.Add(uow, sale)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[SaleResponse]{}, err
	}

	util.SalesCreatedTotal.Inc()
	s.logger.Info("Sale created", zap.String("sale_id", sale.ID().String()))
	return domain.OK(toSaleResponse(sale)), nil
}

// GetSale reads one sale with its lines.
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (domain.Result[SaleResponse], error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if sale == nil {
		return domain.Failf[SaleResponse](domain.CodeNotFound, "sale %s not found", id), nil
	}
	return domain.OK(toSaleResponse(sale)), nil
}

// ListSales returns sales in the given status, newest first.
func (s *SaleService) ListSales(ctx context.Context, status domain.SaleStatus) ([]SaleResponse, error) {
	sales, err := s.sales.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, toSaleResponse(sale))
	}
	return out, nil
}

// AddItem appends or merges a product line on a pending sale.
func (s *SaleService) AddItem(ctx context.Context, saleID uuid.UUID, cmd SaleItemCommand) (domain.Result[SaleResponse], error) {
	ctx, span := util.StartSpan(ctx, "SaleService.AddItem")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[SaleResponse](err), nil
	}

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if sale == nil {
		return domain.Failf[SaleResponse](domain.CodeNotFound, "sale %s not found", saleID), nil
	}

	product, failure, err := s.loadSellableProduct(ctx, cmd.ProductID)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if failure != nil {
		return domain.Fail[SaleResponse](failure), nil
	}

	if r := sale.AddItem(product.ID(), product.Name(), product.Price(), cmd.Quantity); !r.IsOK() {
		return domain.Fail[SaleResponse](r.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.sales.Update(uow, sale)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	return domain.OK(toSaleResponse(sale)), nil
}

// RemoveItem drops the line for a product from a pending sale.
func (s *SaleService) RemoveItem(ctx context.Context, saleID, productID uuid.UUID) (domain.Result[SaleResponse], error) {
	ctx, span := util.StartSpan(ctx, "SaleService.RemoveItem")
	defer span.End()

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if sale == nil {
		return domain.Failf[SaleResponse](domain.CodeNotFound, "sale %s not found", saleID), nil
	}

	if r := sale.RemoveItem(productID); !r.IsOK() {
		return domain.Fail[SaleResponse](r.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.sales.Update(uow, sale)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	return domain.OK(toSaleResponse(sale)), nil
}

// ApplyDiscount sets the discount amount on a pending sale.
func (s *SaleService) ApplyDiscount(ctx context.Context, saleID uuid.UUID, cmd ApplyDiscountCommand) (domain.Result[SaleResponse], error) {
	ctx, span := util.StartSpan(ctx, "SaleService.ApplyDiscount")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[SaleResponse](err), nil
	}
	amount, err := parseAmount("amount", cmd.Amount)
	if err != nil {
		return domain.Failf[SaleResponse](domain.CodeValidationFailed, "%s", err.Error()), nil
	}

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if sale == nil {
		return domain.Failf[SaleResponse](domain.CodeNotFound, "sale %s not found", saleID), nil
	}

	if r := sale.ApplyDiscount(amount); !r.IsOK() {
		return domain.Fail[SaleResponse](r.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.sales.Update(uow, sale)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	return domain.OK(toSaleResponse(sale)), nil
}

// CompleteSale transitions a pending sale to Completed and deducts stock for
// every line in the same commit. Insufficient stock on any line fails the
// whole completion and leaves every product untouched.
func (s *SaleService) CompleteSale(ctx context.Context, saleID uuid.UUID) (domain.Result[SaleResponse], error) {
	ctx, span := util.StartSpan(ctx, "SaleService.CompleteSale")
	defer span.End()

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if sale == nil {
		return domain.Failf[SaleResponse](domain.CodeNotFound, "sale %s not found", saleID), nil
	}

	if r := sale.Complete(); !r.IsOK() {
		util.SalesFailedTotal.WithLabelValues("invalid_state").Inc()
		return domain.Fail[SaleResponse](r.Failure()), nil
	}

	uow := s.uowFactory.New()
	for _, item := range sale.Items() {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return domain.Result[SaleResponse]{}, err
		}
		if product == nil {
			return domain.Failf[SaleResponse](domain.CodeNotFound, "product %s no longer exists", item.ProductID), nil
		}
		if r := product.AdjustStock(-item.Quantity); !r.IsOK() {
			util.StockAdjustmentsTotal.WithLabelValues("rejected").Inc()
			util.SalesFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return domain.Fail[SaleResponse](r.Failure()), nil
		}
		s.products.Update(uow, product)
	}
	s.sales.Update(uow, sale)

	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[SaleResponse]{}, err
	}

	util.SalesCompletedTotal.Inc()
	for _, item := range sale.Items() {
		util.StockAdjustmentsTotal.WithLabelValues("applied").Inc()
		s.invalidateProductCache(ctx, item.ProductID)
	}
	s.logger.Info("Sale completed",
		zap.String("sale_id", sale.ID().String()),
		zap.String("total", sale.TotalAmount().StringFixed(2)))

	s.sendConfirmation(ctx, sale)
	return domain.OK(toSaleResponse(sale)), nil
}

// CancelSale transitions a pending sale to Cancelled. No stock moves.
func (s *SaleService) CancelSale(ctx context.Context, saleID uuid.UUID) (domain.Result[SaleResponse], error) {
	ctx, span := util.StartSpan(ctx, "SaleService.CancelSale")
	defer span.End()

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return domain.Result[SaleResponse]{}, err
	}
	if sale == nil {
		return domain.Failf[SaleResponse](domain.CodeNotFound, "sale %s not found", saleID), nil
	}

	if r := sale.Cancel(); !r.IsOK() {
		return domain.Fail[SaleResponse](r.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.sales.Update(uow, sale)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[SaleResponse]{}, err
	}

	util.SalesCancelledTotal.Inc()
	return domain.OK(toSaleResponse(sale)), nil
}

// loadSellableProduct loads a product that can be sold: it must exist and be
// active. Returns a business failure, never a Result, so callers pick the
// response type.
func (s *SaleService) loadSellableProduct(ctx context.Context, id uuid.UUID) (*domain.Product, *domain.Failure, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, domain.Failuref(domain.CodeNotFound, "product %s not found", id), nil
	}
	if !product.Active() {
		return nil, domain.Failuref(domain.CodeInvalidState, "product %s is not active", id), nil
	}
	return product, nil, nil
}

// sendConfirmation mails the customer after a completed sale. Delivery
// problems are logged, never surfaced: the sale already committed.
func (s *SaleService) sendConfirmation(ctx context.Context, sale *domain.Sale) {
	if s.mail == nil || sale.CustomerID() == nil {
		return
	}
	customer, err := s.customers.GetByID(ctx, *sale.CustomerID())
	if err != nil || customer == nil || customer.Email() == "" {
		return
	}
	if err := s.mail.SendConfirmation(ctx, customer.Email(), sale.ID(), sale.TotalAmount()); err != nil {
		s.logger.Warn("Failed to send sale confirmation",
			zap.String("sale_id", sale.ID().String()), zap.Error(err))
	}
}

func (s *SaleService) invalidateProductCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidation failed",
			zap.String("product_id", id.String()), zap.Error(err))
	}
}
