package service

import (
	"context"
	"time"

	"sales-service/internal/domain"
	"sales-service/internal/util"

	"github.com/google/uuid"
)

// CreateCustomerCommand registers a customer. Email is optional but unique
// when present.
type CreateCustomerCommand struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateCustomerCommand edits a customer's contact details.
type UpdateCustomerCommand struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerResponse is the read model for a customer.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID(),
		Name:      c.Name(),
		Email:     c.Email(),
		Phone:     c.Phone(),
		Address:   c.Address(),
		Active:    c.Active(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

// CustomerService owns the customer use cases.
type CustomerService struct {
	customers  domain.CustomerRepository
	uowFactory domain.UnitOfWorkFactory
	publisher  domain.EventPublisher
}

// NewCustomerService creates a customer service.
func NewCustomerService(
	customers domain.CustomerRepository,
	uowFactory domain.UnitOfWorkFactory,
	publisher domain.EventPublisher,
) *CustomerService {
	return &CustomerService{
		customers:  customers,
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// CreateCustomer enforces email uniqueness and commits the new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) (domain.Result[CustomerResponse], error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.CreateCustomer")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[CustomerResponse](err), nil
	}

	if cmd.Email != "" {
		existing, err := s.customers.GetByEmail(ctx, cmd.Email)
		if err != nil {
			return domain.Result[CustomerResponse]{}, err
		}
		if existing != nil {
			return domain.Failf[CustomerResponse](domain.CodeDuplicateKey, "email %s already registered", cmd.Email), nil
		}
	}

	res := domain.NewCustomer(cmd.Name, cmd.Email, cmd.Phone, cmd.Address)
	if !res.IsOK() {
		return domain.Fail[CustomerResponse](res.Failure()), nil
	}
	customer := res.Value()

	uow := s.uowFactory.New()
	s.customers.Add(uow, customer)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[CustomerResponse]{}, err
	}
	return domain.OK(toCustomerResponse(customer)), nil
}

// GetCustomer reads one customer.
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (domain.Result[CustomerResponse], error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return domain.Result[CustomerResponse]{}, err
	}
	if customer == nil {
		return domain.Failf[CustomerResponse](domain.CodeNotFound, "customer %s not found", id), nil
	}
	return domain.OK(toCustomerResponse(customer)), nil
}

// ListCustomers returns all active customers.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]CustomerResponse, error) {
	customers, err := s.customers.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// UpdateCustomer edits contact details, re-checking email uniqueness when the
// email changes.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, cmd UpdateCustomerCommand) (domain.Result[CustomerResponse], error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.UpdateCustomer")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[CustomerResponse](err), nil
	}

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return domain.Result[CustomerResponse]{}, err
	}
	if customer == nil {
		return domain.Failf[CustomerResponse](domain.CodeNotFound, "customer %s not found", id), nil
	}

	if cmd.Email != "" && cmd.Email != customer.Email() {
		existing, err := s.customers.GetByEmail(ctx, cmd.Email)
		if err != nil {
			return domain.Result[CustomerResponse]{}, err
		}
		if existing != nil {
			return domain.Failf[CustomerResponse](domain.CodeDuplicateKey, "email %s already registered", cmd.Email), nil
		}
	}

	if res := customer.UpdateContact(cmd.Name, cmd.Email, cmd.Phone, cmd.Address); !res.IsOK() {
		return domain.Fail[CustomerResponse](res.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.customers.Update(uow, customer)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[CustomerResponse]{}, err
	}
	return domain.OK(toCustomerResponse(customer)), nil
}

// DeactivateCustomer hides the customer from lookups. Idempotent.
func (s *CustomerService) DeactivateCustomer(ctx context.Context, id uuid.UUID) (domain.Result[CustomerResponse], error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return domain.Result[CustomerResponse]{}, err
	}
	if customer == nil {
		return domain.Failf[CustomerResponse](domain.CodeNotFound, "customer %s not found", id), nil
	}

	customer.Deactivate()

	uow := s.uowFactory.New()
	s.customers.Update(uow, customer)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[CustomerResponse]{}, err
	}
	return domain.OK(toCustomerResponse(customer)), nil
}
