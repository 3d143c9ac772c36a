package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups catalog products.
type Category struct {
	Recorder
	id          uuid.UUID
	name        string
	description string
	active      bool
	createdAt   time.Time
}

// NewCategory constructs an active category and raises CategoryCreated.
// Name uniqueness is pre-checked by the application layer.
func NewCategory(name, description string) Result[*Category] {
	if name == "" {
		return Failf[*Category](CodeValidationFailed, "category name is required")
	}
	c := &Category{
		id:          uuid.New(),
		name:        name,
		description: description,
		active:      true,
		createdAt:   time.Now().UTC(),
	}
	c.Raise(CategoryCreatedEvent{
		BaseEvent: newBaseEvent(EventTypeCategoryCreated, c.id),
		Name:      name,
	})
	return OK(c)
}

// ReconstituteCategory rebuilds a category from persistence.
func ReconstituteCategory(id uuid.UUID, name, description string, active bool, createdAt time.Time) *Category {
	return &Category{
		id:          id,
		name:        name,
		description: description,
		active:      active,
		createdAt:   createdAt,
	}
}

func (c *Category) ID() uuid.UUID        { return c.id }
func (c *Category) Name() string         { return c.name }
func (c *Category) Description() string  { return c.description }
func (c *Category) Active() bool         { return c.active }
func (c *Category) CreatedAt() time.Time { return c.createdAt }

// Rename updates the category name. Uniqueness is pre-checked by the caller.
func (c *Category) Rename(name, description string) Result[Void] {
	if name == "" {
		return Failf[Void](CodeValidationFailed, "category name is required")
	}
	c.name = name
	c.description = description
	return OKVoid()
}

// Activate marks the category as active. Idempotent.
func (c *Category) Activate() { c.active = true }

// Deactivate marks the category as inactive. Idempotent.
func (c *Category) Deactivate() { c.active = false }
