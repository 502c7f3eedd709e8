package store

import (
	"context"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
)

// Membership 그룹/팀 멤버십 리졸버
type Membership struct {
	db *gorm.DB
}

// NewMembership Membership 생성
func NewMembership(db *gorm.DB) *Membership {
	return &Membership{db: db}
}

// ResolveGroup 그룹 멤버 사용자 목록 조회 (비활성 그룹은 빈 목록)
func (m *Membership) ResolveGroup(ctx context.Context, groupID int64) ([]model.User, error) {
	var users []model.User
	err := m.db.WithContext(ctx).
		Table("users").
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Joins("JOIN groups ON groups.id = user_groups.group_id").
		Where("user_groups.group_id = ? AND groups.active = ?", groupID, true).
		Order("user_groups.joined_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ResolveTeam 팀 멤버 사용자 목록 조회 (비활성 팀은 빈 목록)
func (m *Membership) ResolveTeam(ctx context.Context, teamID int64) ([]model.User, error) {
	var users []model.User
	err := m.db.WithContext(ctx).
		Table("users").
		Joins("JOIN user_teams ON user_teams.user_id = users.id").
		Joins("JOIN teams ON teams.id = user_teams.team_id").
		Where("user_teams.team_id = ? AND teams.active = ?", teamID, true).
		Order("user_teams.joined_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
