package mapper

import (
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:           msg.Id,
		UserId:       msg.UserId,
		Role:         msg.Role,
		Content:      msg.Content,
		DocumentName: msg.DocumentName,
		CreatedAt:    msg.CreatedAt,
	}
}

func (m *ChatMapper) ToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:           msg.Id,
		UserId:       msg.UserId,
		Role:         msg.Role,
		Content:      msg.Content,
		DocumentName: msg.DocumentName,
		CreatedAt:    msg.CreatedAt,
	}
}
