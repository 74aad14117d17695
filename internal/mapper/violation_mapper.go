package mapper

import (
	"classguard-be/internal/entity"
	"classguard-be/internal/model"
)

type ViolationMapper struct{}

func NewViolationMapper() *ViolationMapper {
	return &ViolationMapper{}
}

func (m *ViolationMapper) ToEntity(v *model.Violation) *entity.Violation {
	if v == nil {
		return nil
	}
	return &entity.Violation{
		Id:         v.Id,
		UserId:     v.UserId,
		Category:   v.Category,
		Detail:     v.Detail,
		Severity:   entity.ViolationSeverity(v.Severity),
		Resolved:   v.Resolved,
		ResolvedBy: v.ResolvedBy,
		ResolvedAt: v.ResolvedAt,
		DetectedAt: v.DetectedAt,
	}
}

func (m *ViolationMapper) ToModel(v *entity.Violation) *model.Violation {
	if v == nil {
		return nil
	}
	return &model.Violation{
		Id:         v.Id,
		UserId:     v.UserId,
		Category:   v.Category,
		Detail:     v.Detail,
		Severity:   string(v.Severity),
		Resolved:   v.Resolved,
		ResolvedBy: v.ResolvedBy,
		ResolvedAt: v.ResolvedAt,
		DetectedAt: v.DetectedAt,
	}
}
