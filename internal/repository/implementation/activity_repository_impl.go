package implementation

import (
	"context"

	"classguard-be/internal/entity"
	"classguard-be/internal/mapper"
	"classguard-be/internal/model"
	"classguard-be/internal/repository/contract"
	"classguard-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ActivityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ActivityMapper
}

func NewActivityRepository(db *gorm.DB) contract.ActivityRepository {
	return &ActivityRepositoryImpl{
		db:     db,
		mapper: mapper.NewActivityMapper(),
	}
}

func (r *ActivityRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ActivityRepositoryImpl) Create(ctx context.Context, activity *entity.Activity) error {
	modelActivity := r.mapper.ToModel(activity)
	if err := r.db.WithContext(ctx).Create(modelActivity).Error; err != nil {
		return err
	}
	*activity = *r.mapper.ToEntity(modelActivity)
	return nil
}

func (r *ActivityRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error) {
	var modelActivities []*model.Activity
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelActivities).Error; err != nil {
		return nil, err
	}

	activities := make([]*entity.Activity, 0, len(modelActivities))
	for _, m := range modelActivities {
		activities = append(activities, r.mapper.ToEntity(m))
	}
	return activities, nil
}

func (r *ActivityRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Activity{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
