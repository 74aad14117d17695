package mapper

import (
	"encoding/json"

	"classguard-be/internal/entity"
	"classguard-be/internal/model"

	"gorm.io/datatypes"
)

type ActivityMapper struct{}

func NewActivityMapper() *ActivityMapper {
	return &ActivityMapper{}
}

func (m *ActivityMapper) ToEntity(a *model.Activity) *entity.Activity {
	if a == nil {
		return nil
	}
	return &entity.Activity{
		Id:             a.Id,
		UserId:         a.UserId,
		ScreenshotHash: a.ScreenshotHash,
		ActiveWindow:   a.ActiveWindow,
		ActiveApp:      a.ActiveApp,
		Processes:      decodeStringList(a.Processes),
		URLs:           decodeStringList(a.URLs),
		CapturedAt:     a.CapturedAt,
		CreatedAt:      a.CreatedAt,
	}
}

func (m *ActivityMapper) ToModel(a *entity.Activity) *model.Activity {
	if a == nil {
		return nil
	}
	return &model.Activity{
		Id:             a.Id,
		UserId:         a.UserId,
		ScreenshotHash: a.ScreenshotHash,
		ActiveWindow:   a.ActiveWindow,
		ActiveApp:      a.ActiveApp,
		Processes:      encodeStringList(a.Processes),
		URLs:           encodeStringList(a.URLs),
		CapturedAt:     a.CapturedAt,
		CreatedAt:      a.CreatedAt,
	}
}

func encodeStringList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

func decodeStringList(data datatypes.JSON) []string {
	if len(data) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return []string{}
	}
	return values
}
