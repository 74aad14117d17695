package unitofwork

import (
	"context"

	"classguard-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ActivityRepository() contract.ActivityRepository
	ViolationRepository() contract.ViolationRepository
	MessageRepository() contract.MessageRepository
}
