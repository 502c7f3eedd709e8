package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"call-relay-backend/internal/model"
	"call-relay-backend/internal/push"
)

// Caller 요청을 보낸 인증된 사용자
type Caller struct {
	ID   int64
	Name string
}

// RoomStore RoomManager가 쓰는 룸 영속화 계약
type RoomStore interface {
	Save(ctx context.Context, room *model.Room) error
	AddMany(ctx context.Context, rooms []model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByTokenAndParticipant(ctx context.Context, token string, participantID int64) (*model.Room, error)
	GetAnyByToken(ctx context.Context, token string) (*model.Room, error)
	Activate(ctx context.Context, id string) (bool, error)
	SetStatus(ctx context.Context, id string, status model.RoomStatus) error
}

// UserDirectory 사용자 디렉터리 계약 (외부 협력자)
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindAllByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// JoinResult Room/MultiCallRoom/MMCallRoom 응답 스냅샷
type JoinResult struct {
	Rooms     []model.Room `json:"rooms"`
	RoomToken string       `json:"room_token"`
	Photo     *string      `json:"photo,omitempty"`
}

// ParticipantInfo 활성화된 룸의 상대방 정보
type ParticipantInfo struct {
	Name  string  `json:"participant"`
	Photo *string `json:"part_photo,omitempty"`
}

// RoomManager 세 가지 통화 토폴로지의 룸 생성과 상태 전이 관리
type RoomManager struct {
	rooms     RoomStore
	directory UserDirectory
	fanout    *CallFanout
	push      push.Sender
}

// NewRoomManager RoomManager 생성
func NewRoomManager(rooms RoomStore, directory UserDirectory, fanout *CallFanout, sender push.Sender) *RoomManager {
	return &RoomManager{
		rooms:     rooms,
		directory: directory,
		fanout:    fanout,
		push:      sender,
	}
}

// StartOneToOne 1:1 통화 개설
//
// 행 하나를 양쪽이 공유한다 (ID == Token). 수신자가 없으면 ErrNotFound.
func (m *RoomManager) StartOneToOne(ctx context.Context, caller Caller, calleeID int64) (*model.Room, error) {
	callee, err := m.directory.FindByID(ctx, calleeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	token := uuid.NewString()
	room := &model.Room{
		ID:              token,
		Token:           token,
		Name:            model.RoomNameSingle.String(),
		Status:          model.RoomStatusAvailable,
		OwnerID:         caller.ID,
		OwnerName:       caller.Name,
		ParticipantID:   callee.ID,
		ParticipantName: callee.Nickname,
		Participants:    strings.Join([]string{caller.Name, callee.Nickname}, ","),
		LastUpdated:     time.Now(),
	}

	if err := m.rooms.Save(ctx, room); err != nil {
		return nil, err
	}

	m.notify(caller, token, model.RoomNameSingle, []model.User{*callee})

	return room, nil
}

// StartManyToMany 다자 통화 개설
//
// 수신자 ID를 best-effort로 해석해서 (존재하지 않는 ID는 건너뜀)
// 해석된 수신자마다 같은 토큰을 공유하는 행을 만든다. 발신자 본인의
// 행은 만들지 않는다. 아무도 해석되지 않으면 ErrNotFound.
func (m *RoomManager) StartManyToMany(ctx context.Context, caller Caller, calleeIDs []int64) (string, error) {
	callees, err := m.directory.FindAllByIDs(ctx, calleeIDs)
	if err != nil {
		return "", err
	}
	if len(callees) == 0 {
		return "", ErrNotFound
	}

	token, err := m.addCallRooms(ctx, caller, callees, model.RoomNameMM)
	if err != nil {
		return "", err
	}
	return token, nil
}

// StartGroupOrTeamCall 그룹/팀 단체 통화 개설
//
// 멤버가 0명이면 ErrNoMembers를 반환한다. 이는 에러가 아니라
// 구형 클라이언트도 처리해야 하는 정상적인 업무 결과다.
func (m *RoomManager) StartGroupOrTeamCall(ctx context.Context, caller Caller, targetType model.TargetType, targetID int64) (string, error) {
	members, err := m.fanout.ResolveMembers(ctx, targetType, targetID)
	if err != nil {
		return "", err
	}

	// 발신자 본인은 수신 대상이 아니다
	callees := make([]model.User, 0, len(members))
	for _, u := range members {
		if u.ID != caller.ID {
			callees = append(callees, u)
		}
	}
	if len(callees) == 0 {
		return "", ErrNoMembers
	}

	token, err := m.addCallRooms(ctx, caller, callees, model.RoomNameMulti)
	if err != nil {
		return "", err
	}
	return token, nil
}

// addCallRooms 수신자별 룸 행 배치 생성 (토큰과 명단 공유)
func (m *RoomManager) addCallRooms(ctx context.Context, caller Caller, callees []model.User, name model.RoomName) (string, error) {
	parts := make([]string, 0, len(callees)+1)
	parts = append(parts, caller.Name)
	for _, callee := range callees {
		parts = append(parts, callee.Nickname)
	}
	roster := strings.Join(parts, ",")

	token := uuid.NewString()
	now := time.Now()
	rooms := make([]model.Room, 0, len(callees))
	for _, callee := range callees {
		rooms = append(rooms, model.Room{
			ID:              uuid.NewString(),
			Token:           token,
			Name:            name.String(),
			Status:          model.RoomStatusAvailable,
			OwnerID:         caller.ID,
			OwnerName:       caller.Name,
			ParticipantID:   callee.ID,
			ParticipantName: callee.Nickname,
			Participants:    roster,
			LastUpdated:     now,
		})
	}

	if err := m.rooms.AddMany(ctx, rooms); err != nil {
		return "", err
	}

	m.notify(caller, token, name, callees)

	return token, nil
}

// notify 수신자 디바이스에 착신 푸시 발송 (fire-and-forget)
func (m *RoomManager) notify(caller Caller, token string, name model.RoomName, callees []model.User) {
	tokens := make([]string, 0, len(callees))
	for _, callee := range callees {
		if callee.DeviceToken != nil && *callee.DeviceToken != "" {
			tokens = append(tokens, *callee.DeviceToken)
		}
	}
	if len(tokens) == 0 {
		return
	}

	ev := push.Event{
		Type:       "incoming_call",
		RoomToken:  token,
		RoomName:   name.String(),
		CallerName: caller.Name,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.push.Send(ctx, tokens, ev); err != nil {
			log.Printf("⚠️ call push failed (token=%s): %v", token, err)
		}
	}()
}

// JoinByID 룸 ID로 입장 (1:1 통화)
//
// 호출자가 해당 행의 지정 참가자일 때만 활성화한다. 활성화는 조건부
// UPDATE라 동시에 두 번 들어와도 전이는 한 번만 일어나고, 양쪽 다
// active 스냅샷을 받는다.
func (m *RoomManager) JoinByID(ctx context.Context, callerID int64, roomID string) (*JoinResult, error) {
	room, err := m.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if room.ParticipantID == callerID && room.Status != model.RoomStatusActive {
		if _, err := m.rooms.Activate(ctx, room.ID); err != nil {
			return nil, err
		}
		if room, err = m.rooms.GetByID(ctx, room.ID); err != nil {
			return nil, err
		}
	}

	return m.joinResult(ctx, callerID, roomID, room), nil
}

// JoinByToken 통화 토큰으로 입장 (다자 통화)
//
// (토큰, 참가자=호출자) 행이 있으면 그 행을 활성화하고, 없으면 같은
// 토큰의 아무 행이나 읽기 전용으로 돌려준다 (두 번째 참가자의 조회용).
func (m *RoomManager) JoinByToken(ctx context.Context, callerID int64, token string) (*JoinResult, error) {
	room, err := m.rooms.GetByTokenAndParticipant(ctx, token, callerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if room != nil {
		if room.Status != model.RoomStatusActive {
			if _, err := m.rooms.Activate(ctx, room.ID); err != nil {
				return nil, err
			}
			if room, err = m.rooms.GetByID(ctx, room.ID); err != nil {
				return nil, err
			}
		}
	} else {
		if room, err = m.rooms.GetAnyByToken(ctx, token); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	return m.joinResult(ctx, callerID, token, room), nil
}

// joinResult 스냅샷 + 호출자 사진 조합
func (m *RoomManager) joinResult(ctx context.Context, callerID int64, roomToken string, room *model.Room) *JoinResult {
	result := &JoinResult{
		Rooms:     []model.Room{*room},
		RoomToken: roomToken,
	}
	if me, err := m.directory.FindByID(ctx, callerID); err == nil {
		result.Photo = me.ProfileImg
	}
	return result
}

// Ignore 통화 거절
//
// 존재 확인 후 무조건 ignored로 덮어쓴다. 이미 active인 룸도
// 거절할 수 있다 (의도된 last-writer-wins 동작).
func (m *RoomManager) Ignore(ctx context.Context, roomID string) error {
	err := m.rooms.SetStatus(ctx, roomID, model.RoomStatusIgnored)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Participant 활성화된 룸의 상대방 조회
//
// 룸이 아직 active가 아니면 nil을 반환한다 (폴링 계속).
func (m *RoomManager) Participant(ctx context.Context, roomID string) (*ParticipantInfo, error) {
	room, err := m.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if room.Status != model.RoomStatusActive {
		return nil, nil
	}

	user, err := m.directory.FindByID(ctx, room.ParticipantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &ParticipantInfo{Name: user.Nickname, Photo: user.ProfileImg}, nil
}
