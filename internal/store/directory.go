package store

import (
	"context"
	"log"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
	"call-relay-backend/internal/presence"
)

// Directory 사용자 디렉터리 (조회 + 온라인 상태 갱신)
//
// DB가 진실의 원천이고, 온라인 상태는 Redis presence에도 미러링한다.
// presence가 nil이면 DB만 갱신한다 (로컬 개발).
type Directory struct {
	db       *gorm.DB
	presence *presence.Manager
}

// NewDirectory Directory 생성
func NewDirectory(db *gorm.DB, pm *presence.Manager) *Directory {
	return &Directory{db: db, presence: pm}
}

// FindByID ID로 사용자 조회
func (d *Directory) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAllByIDs ID 목록으로 사용자 일괄 조회
//
// 존재하지 않는 ID는 조용히 건너뛴다 (best-effort).
func (d *Directory) FindAllByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateStatus 온라인 상태 갱신 (DB + presence 미러)
func (d *Directory) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := d.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("online_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if d.presence != nil {
		if err := d.presence.SetStatus(ctx, id, status); err != nil {
			// presence 미러 실패는 상태 갱신을 막지 않는다
			log.Printf("⚠️ presence mirror failed for user %d: %v", id, err)
		}
	}
	return nil
}

// UpdateDeviceToken 푸시 디바이스 토큰 등록/갱신
func (d *Directory) UpdateDeviceToken(ctx context.Context, id int64, token *string) error {
	res := d.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("device_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
