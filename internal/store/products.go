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

// ErrStaleAggregate is returned when an optimistic update matched no row:
// either the aggregate was deleted or a concurrent request committed first.
var ErrStaleAggregate = fmt.Errorf("aggregate version conflict")

type productRow struct {
	ID            uuid.UUID       `db:"id"`
	Name          string          `db:"name"`
	SKU           string          `db:"sku"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
	Cost          decimal.Decimal `db:"cost"`
	StockQuantity int             `db:"stock_quantity"`
	CategoryID    uuid.UUID       `db:"category_id"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	Version       int             `db:"version"`
}

func (r productRow) toDomain() *domain.Product {
	return domain.ReconstituteProduct(
		r.ID, r.Name, r.SKU, r.Description,
		r.Price, r.Cost, r.StockQuantity, r.CategoryID,
		r.Active, r.CreatedAt, r.UpdatedAt, r.Version,
	)
}

// ProductRepo loads product aggregates and stages writes into a unit of work.
type ProductRepo struct {
	store *Store
}

// NewProductRepo creates a product repository
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// GetByID retrieves a product by ID; (nil, nil) when absent.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var row productRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetBySKU retrieves a product by its exact, case-sensitive SKU; (nil, nil) when absent.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var row productRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM products WHERE sku = $1", sku)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetAllActive retrieves active products ordered by name.
func (r *ProductRepo) GetAllActive(ctx context.Context) ([]*domain.Product, error) {
	var rows []productRow
	err := r.store.db.SelectContext(ctx, &rows, "SELECT * FROM products WHERE active ORDER BY name")
	if err != nil {
		return nil, err
	}
	products := make([]*domain.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
	}
	return products, nil
}

// Add stages an insert; the unit of work performs the actual commit.
func (r *ProductRepo) Add(uow domain.UnitOfWork, p *domain.Product) {
	uow.RegisterNew(p)
}

// Update stages an update.
func (r *ProductRepo) Update(uow domain.UnitOfWork, p *domain.Product) {
	uow.RegisterDirty(p)
}

var _ domain.ProductRepository = (*ProductRepo)(nil)

func insertProduct(ctx context.Context, tx *sqlx.Tx, p *domain.Product) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, description, price, cost, stock_quantity, category_id, active, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)`,
		p.ID(), p.Name(), p.SKU(), p.Description(), p.Price(), p.Cost(),
		p.StockQuantity(), p.CategoryID(), p.Active(), p.CreatedAt(), p.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// updateProduct persists a product with an optimistic version check. The
// WHERE clause serializes concurrent stock adjustments: a racing writer that
// committed first bumps the version, and this update matches no row.
func updateProduct(ctx context.Context, tx *sqlx.Tx, p *domain.Product) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, sku = $2, description = $3, price = $4, cost = $5,
		    stock_quantity = $6, category_id = $7, active = $8, updated_at = $9,
		    version = version + 1
		WHERE id = $10 AND version = $11`,
		p.Name(), p.SKU(), p.Description(), p.Price(), p.Cost(),
		p.StockQuantity(), p.CategoryID(), p.Active(), p.UpdatedAt(),
		p.ID(), p.Version())
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("product %s: %w", p.ID(), ErrStaleAggregate)
	}
	return nil
}
