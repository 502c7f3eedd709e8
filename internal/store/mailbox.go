package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
)

// 클레임 경합에서 졌을 때 다음 후보로 넘어가는 횟수.
// 경합 윈도우가 마이크로초 단위라 한 번의 재시도면 충분하다.
const claimAttempts = 2

// Mailbox 시그널링 메시지 보관함
//
// Post와 Claim 두 연산만 노출한다. Claim은 읽기와 처리 표시를
// 단일 조건부 UPDATE로 묶어서 같은 메시지가 두 번 전달되지 않게 한다.
type Mailbox struct {
	db *gorm.DB
}

// NewMailbox Mailbox 생성
func NewMailbox(db *gorm.DB) *Mailbox {
	return &Mailbox{db: db}
}

// Post 메시지 무조건 삽입
func (m *Mailbox) Post(ctx context.Context, msg *model.SignalMessage) (int64, error) {
	if err := m.db.WithContext(ctx).Create(msg).Error; err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Claim 처리되지 않은 가장 오래된 메시지를 원자적으로 가져간다
//
// 조건: room_token 일치, kind 일치, 발신자 본인 제외, is_processed = false.
// 후보를 읽은 뒤 is_processed = false 가드를 건 UPDATE로 소유권을 가져가고,
// RowsAffected == 1 인 호출만 메시지를 받는다. 경합에서 지면 다음 후보로
// 한 번 재시도하고, 그래도 없으면 "대기 중 메시지 없음"으로 nil을 반환한다.
func (m *Mailbox) Claim(ctx context.Context, roomToken string, callerID int64, kind model.SignalKind) (*model.SignalMessage, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var msg model.SignalMessage
		err := m.db.WithContext(ctx).
			Where("room_token = ? AND kind = ? AND sender <> ? AND is_processed = ?",
				roomToken, kind.String(), callerID, false).
			Order("created_at ASC, id ASC").
			First(&msg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		res := m.db.WithContext(ctx).Model(&model.SignalMessage{}).
			Where("id = ? AND is_processed = ?", msg.ID, false).
			Update("is_processed", true)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			msg.IsProcessed = true
			return &msg, nil
		}
		// 다른 호출이 먼저 가져갔다. 다음 후보로 재시도.
	}
	return nil, nil
}
