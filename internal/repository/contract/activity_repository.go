package contract

import (
	"context"

	"classguard-be/internal/entity"
	"classguard-be/internal/repository/specification"
)

// ActivityRepository is append-only on the ingestion hot path.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
