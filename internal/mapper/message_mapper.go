package mapper

import (
	"classguard-be/internal/entity"
	"classguard-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:         msg.Id,
		SenderId:   msg.SenderId,
		ReceiverId: msg.ReceiverId,
		Type:       entity.MessageType(msg.Type),
		Content:    msg.Content,
		Read:       msg.Read,
		ReadAt:     msg.ReadAt,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:         msg.Id,
		SenderId:   msg.SenderId,
		ReceiverId: msg.ReceiverId,
		Type:       string(msg.Type),
		Content:    msg.Content,
		Read:       msg.Read,
		ReadAt:     msg.ReadAt,
		CreatedAt:  msg.CreatedAt,
	}
}
