package service

import (
	"context"
	"time"

	"sales-service/internal/domain"
	"sales-service/internal/util"

	"github.com/google/uuid"
)

// CreateCategoryCommand creates a product category.
type CreateCategoryCommand struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateCategoryCommand renames a category.
type UpdateCategoryCommand struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CategoryResponse is the read model for a category.
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID(),
		Name:        c.Name(),
		Description: c.Description(),
		Active:      c.Active(),
		CreatedAt:   c.CreatedAt(),
	}
}

// CategoryService owns the category use cases.
type CategoryService struct {
	categories domain.CategoryRepository
	uowFactory domain.UnitOfWorkFactory
	publisher  domain.EventPublisher
}

// NewCategoryService creates a category service.
func NewCategoryService(
	categories domain.CategoryRepository,
	uowFactory domain.UnitOfWorkFactory,
	publisher domain.EventPublisher,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// CreateCategory enforces name uniqueness and commits the new category.
func (s *CategoryService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (domain.Result[CategoryResponse], error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.CreateCategory")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[CategoryResponse](err), nil
	}

	existing, err := s.categories.GetByName(ctx, cmd.Name)
	if err != nil {
		return domain.Result[CategoryResponse]{}, err
	}
	if existing != nil {
		return domain.Failf[CategoryResponse](domain.CodeDuplicateKey, "category %q already exists", cmd.Name), nil
	}

	res := domain.NewCategory(cmd.Name, cmd.Description)
	if !res.IsOK() {
		return domain.Fail[CategoryResponse](res.Failure()), nil
	}
	category := res.Value()

	uow := s.uowFactory.New()
	s.categories.Add(uow, category)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[CategoryResponse]{}, err
	}
	return domain.OK(toCategoryResponse(category)), nil
}

// GetCategory reads one category.
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (domain.Result[CategoryResponse], error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return domain.Result[CategoryResponse]{}, err
	}
	if category == nil {
		return domain.Failf[CategoryResponse](domain.CodeNotFound, "category %s not found", id), nil
	}
	return domain.OK(toCategoryResponse(category)), nil
}

// ListCategories returns all active categories.
func (s *CategoryService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categories.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

// UpdateCategory renames a category, re-checking uniqueness when the name
// changes.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, cmd UpdateCategoryCommand) (domain.Result[CategoryResponse], error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.UpdateCategory")
	defer span.End()

	if err := validate.Struct(cmd); err != nil {
		return validationFailure[CategoryResponse](err), nil
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return domain.Result[CategoryResponse]{}, err
	}
	if category == nil {
		return domain.Failf[CategoryResponse](domain.CodeNotFound, "category %s not found", id), nil
	}

	if cmd.Name != category.Name() {
		existing, err := s.categories.GetByName(ctx, cmd.Name)
		if err != nil {
			return domain.Result[CategoryResponse]{}, err
		}
		if existing != nil {
			return domain.Failf[CategoryResponse](domain.CodeDuplicateKey, "category %q already exists", cmd.Name), nil
		}
	}

	if res := category.Rename(cmd.Name, cmd.Description); !res.IsOK() {
		return domain.Fail[CategoryResponse](res.Failure()), nil
	}

	uow := s.uowFactory.New()
	s.categories.Update(uow, category)
	if err := uow.Commit(ctx, s.publisher); err != nil {
		return domain.Result[CategoryResponse]{}, err
	}
	return domain.OK(toCategoryResponse(category)), nil
}
