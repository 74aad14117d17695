package contract

import (
	"context"

	"classguard-be/internal/entity"
	"classguard-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Presence bookkeeping written from the websocket layer.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error
}
