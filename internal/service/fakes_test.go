package service

import (
	"context"
	"testing"

	"sales-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// In-memory doubles for the domain ports. They keep the unit of work
// semantics the services rely on: events drain on commit and reach the
// publisher only when the commit succeeds.

type fakeUow struct {
	regs      []domain.AggregateRoot
	commitErr error
	commits   int
}

func (u *fakeUow) RegisterNew(agg domain.AggregateRoot)   { u.regs = append(u.regs, agg) }
func (u *fakeUow) RegisterDirty(agg domain.AggregateRoot) { u.regs = append(u.regs, agg) }

func (u *fakeUow) Commit(ctx context.Context, pub domain.EventPublisher) error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.commits++
	for _, agg := range u.regs {
		for _, e := range agg.DrainEvents() {
			if pub != nil {
				pub.Publish(ctx, e)
			}
		}
	}
	u.regs = nil
	return nil
}

type fakeUowFactory struct {
	commitErr error
	created   []*fakeUow
}

func (f *fakeUowFactory) New() domain.UnitOfWork {
	u := &fakeUow{commitErr: f.commitErr}
	f.created = append(f.created, u)
	return u
}

type recordingPublisher struct {
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e domain.Event) {
	p.events = append(p.events, e)
}

type fakeProductRepo struct {
	byID map[uuid.UUID]*domain.Product
	err  error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[uuid.UUID]*domain.Product)}
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.byID {
		if p.SKU() == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) GetAllActive(ctx context.Context) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Product
	for _, p := range f.byID {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Add(uow domain.UnitOfWork, p *domain.Product) {
	f.byID[p.ID()] = p
	uow.RegisterNew(p)
}

func (f *fakeProductRepo) Update(uow domain.UnitOfWork, p *domain.Product) {
	f.byID[p.ID()] = p
	uow.RegisterDirty(p)
}

type fakeCategoryRepo struct {
	byID map[uuid.UUID]*domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: make(map[uuid.UUID]*domain.Category)}
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return f.byID[id], nil
}

func (f *fakeCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range f.byID {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) GetAllActive(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.byID {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Add(uow domain.UnitOfWork, c *domain.Category) {
	f.byID[c.ID()] = c
	uow.RegisterNew(c)
}

func (f *fakeCategoryRepo) Update(uow domain.UnitOfWork, c *domain.Category) {
	f.byID[c.ID()] = c
	uow.RegisterDirty(c)
}

type fakeCustomerRepo struct {
	byID map[uuid.UUID]*domain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byID: make(map[uuid.UUID]*domain.Customer)}
}

func (f *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return f.byID[id], nil
}

func (f *fakeCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	for _, c := range f.byID {
		if c.Email() == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) GetAllActive(ctx context.Context) ([]*domain.Customer, error) {
	var out []*domain.Customer
	for _, c := range f.byID {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCustomerRepo) Add(uow domain.UnitOfWork, c *domain.Customer) {
	f.byID[c.ID()] = c
	uow.RegisterNew(c)
}

func (f *fakeCustomerRepo) Update(uow domain.UnitOfWork, c *domain.Customer) {
	f.byID[c.ID()] = c
	uow.RegisterDirty(c)
}

type fakeSaleRepo struct {
	byID map[uuid.UUID]*domain.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{byID: make(map[uuid.UUID]*domain.Sale)}
}

func (f *fakeSaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	return f.byID[id], nil
}

func (f *fakeSaleRepo) ListByStatus(ctx context.Context, status domain.SaleStatus) ([]*domain.Sale, error) {
	var out []*domain.Sale
	for _, s := range f.byID {
		if s.Status() == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSaleRepo) Add(uow domain.UnitOfWork, s *domain.Sale) {
	f.byID[s.ID()] = s
	uow.RegisterNew(s)
}

func (f *fakeSaleRepo) Update(uow domain.UnitOfWork, s *domain.Sale) {
	f.byID[s.ID()] = s
	uow.RegisterDirty(s)
}

type fakeMailer struct {
	recipients []string
	saleIDs    []uuid.UUID
	totals     []decimal.Decimal
}

func (m *fakeMailer) SendConfirmation(ctx context.Context, to string, saleID uuid.UUID, total decimal.Decimal) error {
	m.recipients = append(m.recipients, to)
	m.saleIDs = append(m.saleIDs, saleID)
	m.totals = append(m.totals, total)
	return nil
}

type fakeCache struct {
	store       map[uuid.UUID]ProductResponse
	invalidated []uuid.UUID
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[uuid.UUID]ProductResponse)}
}

func (c *fakeCache) GetProduct(ctx context.Context, id uuid.UUID, dest interface{}) (bool, error) {
	cached, ok := c.store[id]
	if !ok {
		return false, nil
	}
	*(dest.(*ProductResponse)) = cached
	return true, nil
}

func (c *fakeCache) SetProduct(ctx context.Context, id uuid.UUID, payload interface{}) error {
	c.store[id] = payload.(ProductResponse)
	c.sets++
	return nil
}

func (c *fakeCache) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	delete(c.store, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

var (
	_ domain.ProductRepository  = (*fakeProductRepo)(nil)
	_ domain.CategoryRepository = (*fakeCategoryRepo)(nil)
	_ domain.CustomerRepository = (*fakeCustomerRepo)(nil)
	_ domain.SaleRepository     = (*fakeSaleRepo)(nil)
	_ ProductCache              = (*fakeCache)(nil)
)

func mustCategory(t *testing.T, repo *fakeCategoryRepo, name string) *domain.Category {
	t.Helper()
	res := domain.NewCategory(name, "")
	require.True(t, res.IsOK())
	c := res.Value()
	c.DrainEvents()
	repo.byID[c.ID()] = c
	return c
}

func mustProduct(t *testing.T, repo *fakeProductRepo, sku, price string, stock int, categoryID uuid.UUID) *domain.Product {
	t.Helper()
	res := domain.NewProduct("Product "+sku, sku, "", decimal.RequireFromString(price), decimal.RequireFromString("1.00"), stock, categoryID)
	require.True(t, res.IsOK())
	p := res.Value()
	p.DrainEvents()
	repo.byID[p.ID()] = p
	return p
}

func mustCustomer(t *testing.T, repo *fakeCustomerRepo, name, email string) *domain.Customer {
	t.Helper()
	res := domain.NewCustomer(name, email, "", "")
	require.True(t, res.IsOK())
	c := res.Value()
	c.DrainEvents()
	repo.byID[c.ID()] = c
	return c
}
