package store

import (
	"context"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
)

// ChatLog 통화 중 채팅 로그 저장소
type ChatLog struct {
	db *gorm.DB
}

// NewChatLog ChatLog 생성
func NewChatLog(db *gorm.DB) *ChatLog {
	return &ChatLog{db: db}
}

// Save 채팅 메시지 저장
func (c *ChatLog) Save(ctx context.Context, msg *model.RoomChatMessage) error {
	return c.db.WithContext(ctx).Create(msg).Error
}

// ListByToken 토큰별 채팅 메시지 조회 (오래된 것부터)
func (c *ChatLog) ListByToken(ctx context.Context, roomToken string, limit int) ([]model.RoomChatMessage, error) {
	var msgs []model.RoomChatMessage
	err := c.db.WithContext(ctx).
		Where("room_token = ?", roomToken).
		Order("created_at ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
