package service

import (
	"context"
	"errors"
	"fmt"

	"sales-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ProductCache is the slice of the redis client the product read path uses.
// A nil cache disables caching; cache faults degrade to store reads.
type ProductCache interface {
	GetProduct(ctx context.Context, id uuid.UUID, dest interface{}) (bool, error)
	SetProduct(ctx context.Context, id uuid.UUID, payload interface{}) error
	InvalidateProduct(ctx context.Context, id uuid.UUID) error
}

func validationFailure[T any](err error) domain.Result[T] {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Failf[T](domain.CodeValidationFailed,
			"field %s failed validation on rule %s", fe.Field(), fe.Tag())
	}
	return domain.Failf[T](domain.CodeValidationFailed, "%s", err.Error())
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a valid amount: %q", field, raw)
	}
	return d, nil
}
