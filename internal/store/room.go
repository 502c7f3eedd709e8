package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
)

// RoomStore 룸 영속화 (정책 없는 순수 데이터 접근)
type RoomStore struct {
	db *gorm.DB
}

// NewRoomStore RoomStore 생성
func NewRoomStore(db *gorm.DB) *RoomStore {
	return &RoomStore{db: db}
}

// Save 룸 한 건 저장
func (s *RoomStore) Save(ctx context.Context, room *model.Room) error {
	return s.db.WithContext(ctx).Create(room).Error
}

// AddMany 한 통화의 룸 배치를 단일 트랜잭션으로 저장
//
// 같은 토큰을 공유하는 행들은 전부 생기거나 전부 생기지 않아야 한다.
func (s *RoomStore) AddMany(ctx context.Context, rooms []model.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rooms).Error
	})
}

// GetByID ID로 룸 조회
func (s *RoomStore) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByTokenAndParticipant 토큰 + 참가자 조합으로 룸 조회
func (s *RoomStore) GetByTokenAndParticipant(ctx context.Context, token string, participantID int64) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).
		Where("token = ? AND participant_id = ?", token, participantID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetAnyByToken 토큰에 속한 아무 룸 행 하나 조회 (읽기 전용 조회용)
func (s *RoomStore) GetAnyByToken(ctx context.Context, token string) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).
		Where("token = ?", token).
		Order("last_updated ASC").
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Activate available/ignored 상태를 active로 조건부 전이
//
// status != active 가드가 걸린 단일 UPDATE라서 동시에 여러 호출이 와도
// 전이를 관측하는 쪽은 최대 하나다. 이 호출이 전이를 만들었는지를 반환한다.
func (s *RoomStore) Activate(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ? AND status <> ?", id, model.RoomStatusActive.String()).
		Updates(map[string]interface{}{
			"status":       model.RoomStatusActive.String(),
			"last_updated": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetStatus 상태 무조건 덮어쓰기 (존재 확인만 하는 last-writer-wins)
//
// 상태 전이가 단조 전진이라 늦게 도착한 쓰기가 상태를 되돌릴 수 없다.
func (s *RoomStore) SetStatus(ctx context.Context, id string, status model.RoomStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status.String(),
			"last_updated": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
