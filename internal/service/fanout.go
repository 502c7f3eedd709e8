package service

import (
	"context"
	"fmt"

	"call-relay-backend/internal/model"
)

// MembershipResolver 그룹/팀 멤버십 조회 계약 (외부 협력자)
type MembershipResolver interface {
	ResolveGroup(ctx context.Context, groupID int64) ([]model.User, error)
	ResolveTeam(ctx context.Context, teamID int64) ([]model.User, error)
}

// CallFanout 그룹/팀 ID를 멤버 사용자 목록으로 펼친다
//
// 디렉터리의 순수 함수. 로컬 상태도, 자체 재시도도 없다.
type CallFanout struct {
	members MembershipResolver
}

// NewCallFanout CallFanout 생성
func NewCallFanout(members MembershipResolver) *CallFanout {
	return &CallFanout{members: members}
}

// ResolveMembers 대상 종류에 따라 멤버 목록 조회
func (f *CallFanout) ResolveMembers(ctx context.Context, targetType model.TargetType, targetID int64) ([]model.User, error) {
	switch targetType {
	case model.TargetTypeGroup:
		return f.members.ResolveGroup(ctx, targetID)
	case model.TargetTypeTeam:
		return f.members.ResolveTeam(ctx, targetID)
	default:
		return nil, fmt.Errorf("unknown target type %q", targetType)
	}
}
