package contract

import (
	"context"
	"time"

	"classguard-be/internal/entity"
	"classguard-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ViolationRepository interface {
	Create(ctx context.Context, violation *entity.Violation) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Violation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByUserSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error)
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.UUID) error
}
