package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a registered buyer. Email is optional but unique when present;
// uniqueness is pre-checked by the application layer.
type Customer struct {
	Recorder
	id        uuid.UUID
	name      string
	email     string
	phone     string
	address   string
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// NewCustomer constructs an active customer and raises CustomerCreated.
func NewCustomer(name, email, phone, address string) Result[*Customer] {
	if name == "" {
		return Failf[*Customer](CodeValidationFailed, "customer name is required")
	}
	now := time.Now().UTC()
	c := &Customer{
		id:        uuid.New(),
		name:      name,
		email:     email,
		phone:     phone,
		address:   address,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
	c.Raise(CustomerCreatedEvent{
		BaseEvent: newBaseEvent(EventTypeCustomerCreated, c.id),
		Name:      name,
	})
	return OK(c)
}

// ReconstituteCustomer rebuilds a customer from persistence.
func ReconstituteCustomer(id uuid.UUID, name, email, phone, address string, active bool, createdAt, updatedAt time.Time) *Customer {
	return &Customer{
		id:        id,
		name:      name,
		email:     email,
		phone:     phone,
		address:   address,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c *Customer) ID() uuid.UUID        { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Email() string        { return c.email }
func (c *Customer) Phone() string        { return c.phone }
func (c *Customer) Address() string      { return c.address }
func (c *Customer) Active() bool         { return c.active }
func (c *Customer) CreatedAt() time.Time { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time { return c.updatedAt }

// UpdateContact edits the customer's contact details. Email uniqueness is
// pre-checked by the caller when the email changes.
func (c *Customer) UpdateContact(name, email, phone, address string) Result[Void] {
	if name == "" {
		return Failf[Void](CodeValidationFailed, "customer name is required")
	}
	c.name = name
	c.email = email
	c.phone = phone
	c.address = address
	c.updatedAt = time.Now().UTC()
	return OKVoid()
}

// Activate marks the customer as active. Idempotent.
func (c *Customer) Activate() {
	if c.active {
		return
	}
	c.active = true
	c.updatedAt = time.Now().UTC()
}

// Deactivate marks the customer as inactive. Idempotent.
func (c *Customer) Deactivate() {
	if !c.active {
		return
	}
	c.active = false
	c.updatedAt = time.Now().UTC()
}
