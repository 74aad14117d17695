package contract

import (
	"context"

	"classguard-be/internal/entity"
	"classguard-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
