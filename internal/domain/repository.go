package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repositories load aggregates and stage writes into a unit of work; the
// unit of work performs the actual commit. GetByID-style accessors return
// (nil, nil) when the aggregate does not exist — a plain error means the
// store itself failed.

// ProductRepository is the store contract for the product aggregate.
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	GetAllActive(ctx context.Context) ([]*Product, error)
	Add(uow UnitOfWork, p *Product)
	Update(uow UnitOfWork, p *Product)
}

// CategoryRepository is the store contract for the category aggregate.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	GetAllActive(ctx context.Context) ([]*Category, error)
	Add(uow UnitOfWork, c *Category)
	Update(uow UnitOfWork, c *Category)
}

// CustomerRepository is the store contract for the customer aggregate.
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetAllActive(ctx context.Context) ([]*Customer, error)
	Add(uow UnitOfWork, c *Customer)
	Update(uow UnitOfWork, c *Customer)
}

// SaleRepository is the store contract for the sale aggregate.
type SaleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListByStatus(ctx context.Context, status SaleStatus) ([]*Sale, error)
	Add(uow UnitOfWork, s *Sale)
	Update(uow UnitOfWork, s *Sale)
}
