package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sales-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type saleRow struct {
	ID             uuid.UUID       `db:"id"`
	CustomerID     uuid.NullUUID   `db:"customer_id"`
	PaymentMethod  string          `db:"payment_method"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Status         string          `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
	CompletedAt    sql.NullTime    `db:"completed_at"`
}

type saleItemRow struct {
	ID          uuid.UUID       `db:"id"`
	SaleID      uuid.UUID       `db:"sale_id"`
	ProductID   uuid.UUID       `db:"product_id"`
	ProductName string          `db:"product_name"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Quantity    int             `db:"quantity"`
	Position    int             `db:"position"`
}

func (r saleRow) toDomain(items []domain.SaleItem) *domain.Sale {
	var customerID *uuid.UUID
	if r.CustomerID.Valid {
		id := r.CustomerID.UUID
		customerID = &id
	}
	var completedAt *time.Time
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		completedAt = &t
	}
	return domain.ReconstituteSale(
		r.ID, customerID, r.PaymentMethod, items,
		r.Subtotal, r.TaxAmount, r.DiscountAmount, r.TotalAmount,
		domain.SaleStatus(r.Status), r.CreatedAt, completedAt,
	)
}

// SaleRepo loads sale aggregates (sale plus owned items) and stages writes
// into a unit of work.
type SaleRepo struct {
	store *Store
}

// NewSaleRepo creates a sale repository
func NewSaleRepo(store *Store) *SaleRepo {
	return &SaleRepo{store: store}
}

// GetByID retrieves a sale with its line items; (nil, nil) when absent.
func (r *SaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var row saleRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM sales WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(items), nil
}

// ListByStatus retrieves sales in the given status, newest first.
func (r *SaleRepo) ListByStatus(ctx context.Context, status domain.SaleStatus) ([]*domain.Sale, error) {
	var rows []saleRow
	err := r.store.db.SelectContext(ctx, &rows,
		"SELECT * FROM sales WHERE status = $1 ORDER BY created_at DESC", string(status))
	if err != nil {
		return nil, err
	}

	sales := make([]*domain.Sale, len(rows))
	for i, row := range rows {
		items, err := r.loadItems(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		sales[i] = row.toDomain(items)
	}
	return sales, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	var rows []saleItemRow
	err := r.store.db.SelectContext(ctx, &rows,
		"SELECT * FROM sale_items WHERE sale_id = $1 ORDER BY position", saleID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.SaleItem, len(rows))
	for i, row := range rows {
		items[i] = domain.SaleItem{
			ID:          row.ID,
			SaleID:      row.SaleID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			UnitPrice:   row.UnitPrice,
			Quantity:    row.Quantity,
		}
	}
	return items, nil
}

// Add stages an insert; the unit of work performs the actual commit.
func (r *SaleRepo) Add(uow domain.UnitOfWork, s *domain.Sale) {
	uow.RegisterNew(s)
}

// Update stages an update.
func (r *SaleRepo) Update(uow domain.UnitOfWork, s *domain.Sale) {
	uow.RegisterDirty(s)
}

var _ domain.SaleRepository = (*SaleRepo)(nil)

func insertSale(ctx context.Context, tx *sqlx.Tx, s *domain.Sale) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, customer_id, payment_method, subtotal, tax_amount, discount_amount, total_amount, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID(), nullableUUID(s.CustomerID()), s.PaymentMethod(),
		s.Subtotal(), s.TaxAmount(), s.DiscountAmount(), s.TotalAmount(),
		string(s.Status()), s.CreatedAt(), nullableTime(s.CompletedAt()))
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return insertSaleItems(ctx, tx, s)
}

// updateSale rewrites the sale row and replaces its owned item rows in the
// same transaction; items have no lifecycle apart from their sale.
func updateSale(ctx context.Context, tx *sqlx.Tx, s *domain.Sale) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE sales
		SET subtotal = $1, tax_amount = $2, discount_amount = $3, total_amount = $4,
		    status = $5, completed_at = $6
		WHERE id = $7`,
		s.Subtotal(), s.TaxAmount(), s.DiscountAmount(), s.TotalAmount(),
		string(s.Status()), nullableTime(s.CompletedAt()), s.ID())
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sale_items WHERE sale_id = $1", s.ID()); err != nil {
		return fmt.Errorf("failed to clear sale items: %w", err)
	}
	return insertSaleItems(ctx, tx, s)
}

func insertSaleItems(ctx context.Context, tx *sqlx.Tx, s *domain.Sale) error {
	for i, item := range s.Items() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, product_name, unit_price, quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.SaleID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, i)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}
	return nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
