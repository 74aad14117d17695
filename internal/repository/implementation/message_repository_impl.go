package implementation

import (
	"context"
	"time"

	"classguard-be/internal/entity"
	"classguard-be/internal/mapper"
	"classguard-be/internal/model"
	"classguard-be/internal/repository/contract"
	"classguard-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	modelMessage := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(modelMessage).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(modelMessage)
	return nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var modelMessages []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelMessages).Error; err != nil {
		return nil, err
	}

	messages := make([]*entity.Message, 0, len(modelMessages))
	for _, m := range modelMessages {
		messages = append(messages, r.mapper.ToEntity(m))
	}
	return messages, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *MessageRepositoryImpl) MarkRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		}).Error
}
