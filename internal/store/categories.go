package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sales-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type categoryRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r categoryRow) toDomain() *domain.Category {
	return domain.ReconstituteCategory(r.ID, r.Name, r.Description, r.Active, r.CreatedAt)
}

// CategoryRepo loads category aggregates and stages writes into a unit of work.
type CategoryRepo struct {
	store *Store
}

// NewCategoryRepo creates a category repository
func NewCategoryRepo(store *Store) *CategoryRepo {
	return &CategoryRepo{store: store}
}

// GetByID retrieves a category by ID; (nil, nil) when absent.
func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var row categoryRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM categories WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByName retrieves a category by its unique name; (nil, nil) when absent.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	var row categoryRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM categories WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetAllActive retrieves active categories ordered by name.
func (r *CategoryRepo) GetAllActive(ctx context.Context) ([]*domain.Category, error) {
	var rows []categoryRow
	err := r.store.db.SelectContext(ctx, &rows, "SELECT * FROM categories WHERE active ORDER BY name")
	if err != nil {
		return nil, err
	}
	categories := make([]*domain.Category, len(rows))
	for i, row := range rows {
		categories[i] = row.toDomain()
	}
	return categories, nil
}

// Add stages an insert; the unit of work performs the actual commit.
func (r *CategoryRepo) Add(uow domain.UnitOfWork, c *domain.Category) {
	uow.RegisterNew(c)
}

// Update stages an update.
func (r *CategoryRepo) Update(uow domain.UnitOfWork, c *domain.Category) {
	uow.RegisterDirty(c)
}

var _ domain.CategoryRepository = (*CategoryRepo)(nil)

func insertCategory(ctx context.Context, tx *sqlx.Tx, c *domain.Category) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID(), c.Name(), c.Description(), c.Active(), c.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func updateCategory(ctx context.Context, tx *sqlx.Tx, c *domain.Category) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE categories SET name = $1, description = $2, active = $3 WHERE id = $4`,
		c.Name(), c.Description(), c.Active(), c.ID())
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}
