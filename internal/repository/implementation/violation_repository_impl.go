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

type ViolationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ViolationMapper
}

func NewViolationRepository(db *gorm.DB) contract.ViolationRepository {
	return &ViolationRepositoryImpl{
		db:     db,
		mapper: mapper.NewViolationMapper(),
	}
}

func (r *ViolationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ViolationRepositoryImpl) Create(ctx context.Context, violation *entity.Violation) error {
	modelViolation := r.mapper.ToModel(violation)
	if err := r.db.WithContext(ctx).Create(modelViolation).Error; err != nil {
		return err
	}
	*violation = *r.mapper.ToEntity(modelViolation)
	return nil
}

func (r *ViolationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Violation, error) {
	var modelViolations []*model.Violation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelViolations).Error; err != nil {
		return nil, err
	}

	violations := make([]*entity.Violation, 0, len(modelViolations))
	for _, m := range modelViolations {
		violations = append(violations, r.mapper.ToEntity(m))
	}
	return violations, nil
}

func (r *ViolationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Violation{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *ViolationRepositoryImpl) CountByUserSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Violation{}).
		Where("user_id = ? AND detected_at > ?", userId, since).
		Count(&count).Error
	return count, err
}

func (r *ViolationRepositoryImpl) Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Violation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_by": resolvedBy,
			"resolved_at": now,
		}).Error
}
