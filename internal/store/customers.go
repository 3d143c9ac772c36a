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

type customerRow struct {
	ID        uuid.UUID      `db:"id"`
	Name      string         `db:"name"`
	Email     sql.NullString `db:"email"`
	Phone     string         `db:"phone"`
	Address   string         `db:"address"`
	Active    bool           `db:"active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r customerRow) toDomain() *domain.Customer {
	return domain.ReconstituteCustomer(r.ID, r.Name, r.Email.String, r.Phone, r.Address,
		r.Active, r.CreatedAt, r.UpdatedAt)
}

// CustomerRepo loads customer aggregates and stages writes into a unit of work.
type CustomerRepo struct {
	store *Store
}

// NewCustomerRepo creates a customer repository
func NewCustomerRepo(store *Store) *CustomerRepo {
	return &CustomerRepo{store: store}
}

// GetByID retrieves a customer by ID; (nil, nil) when absent.
func (r *CustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var row customerRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByEmail retrieves a customer by email; (nil, nil) when absent.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var row customerRow
	err := r.store.db.GetContext(ctx, &row, "SELECT * FROM customers WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetAllActive retrieves active customers ordered by name.
func (r *CustomerRepo) GetAllActive(ctx context.Context) ([]*domain.Customer, error) {
	var rows []customerRow
	err := r.store.db.SelectContext(ctx, &rows, "SELECT * FROM customers WHERE active ORDER BY name")
	if err != nil {
		return nil, err
	}
	customers := make([]*domain.Customer, len(rows))
	for i, row := range rows {
		customers[i] = row.toDomain()
	}
	return customers, nil
}

// Add stages an insert; the unit of work performs the actual commit.
func (r *CustomerRepo) Add(uow domain.UnitOfWork, c *domain.Customer) {
	uow.RegisterNew(c)
}

// Update stages an update.
func (r *CustomerRepo) Update(uow domain.UnitOfWork, c *domain.Customer) {
	uow.RegisterDirty(c)
}

var _ domain.CustomerRepository = (*CustomerRepo)(nil)

func nullableEmail(email string) sql.NullString {
	return sql.NullString{String: email, Valid: email != ""}
}

func insertCustomer(ctx context.Context, tx *sqlx.Tx, c *domain.Customer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID(), c.Name(), nullableEmail(c.Email()), c.Phone(), c.Address(),
		c.Active(), c.CreatedAt(), c.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func updateCustomer(ctx context.Context, tx *sqlx.Tx, c *domain.Customer) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE customers SET name = $1, email = $2, phone = $3, address = $4, active = $5, updated_at = $6
		WHERE id = $7`,
		c.Name(), nullableEmail(c.Email()), c.Phone(), c.Address(), c.Active(), c.UpdatedAt(), c.ID())
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}
