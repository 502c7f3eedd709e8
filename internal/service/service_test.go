package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
	"call-relay-backend/internal/push"
)

// 테스트용 인메모리 구현들. 실제 저장소와 같은 계약을 지킨다:
// 존재하지 않는 행은 gorm.ErrRecordNotFound, Activate/Claim은 뮤텍스로
// 원자성을 보장한다.

type fakeRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*model.Room)}
}

func (s *fakeRoomStore) Save(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *room
	s.rooms[room.ID] = &copied
	return nil
}

func (s *fakeRoomStore) AddMany(_ context.Context, rooms []model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rooms {
		copied := rooms[i]
		s.rooms[copied.ID] = &copied
	}
	return nil
}

func (s *fakeRoomStore) GetByID(_ context.Context, id string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *room
	return &copied, nil
}

func (s *fakeRoomStore) GetByTokenAndParticipant(_ context.Context, token string, participantID int64) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.Token == token && room.ParticipantID == participantID {
			copied := *room
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeRoomStore) GetAnyByToken(_ context.Context, token string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, room := range s.rooms {
		if room.Token == token {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Strings(ids)
	copied := *s.rooms[ids[0]]
	return &copied, nil
}

func (s *fakeRoomStore) Activate(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return false, nil
	}
	if room.Status == model.RoomStatusActive {
		return false, nil
	}
	room.Status = model.RoomStatusActive
	room.LastUpdated = time.Now()
	return true, nil
}

func (s *fakeRoomStore) SetStatus(_ context.Context, id string, status model.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	room.Status = status
	room.LastUpdated = time.Now()
	return nil
}

func (s *fakeRoomStore) byToken(token string) []model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Room
	for _, room := range s.rooms {
		if room.Token == token {
			out = append(out, *room)
		}
	}
	return out
}

type fakeDirectory struct {
	mu       sync.Mutex
	users    map[int64]model.User
	statuses map[int64]string
}

func newFakeDirectory(users ...model.User) *fakeDirectory {
	d := &fakeDirectory{
		users:    make(map[int64]model.User),
		statuses: make(map[int64]string),
	}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) FindByID(_ context.Context, id int64) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (d *fakeDirectory) FindAllByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if user, ok := d.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (d *fakeDirectory) UpdateStatus(_ context.Context, id int64, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	d.statuses[id] = status
	return nil
}

// memMailbox Claim의 선택+표시를 뮤텍스 한 번에 묶은 인메모리 보관함
type memMailbox struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*model.SignalMessage
}

func newMemMailbox() *memMailbox {
	return &memMailbox{}
}

func (m *memMailbox) Post(_ context.Context, msg *model.SignalMessage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	copied := *msg
	m.msgs = append(m.msgs, &copied)
	return msg.ID, nil
}

func (m *memMailbox) Claim(_ context.Context, roomToken string, callerID int64, kind model.SignalKind) (*model.SignalMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.RoomToken == roomToken && msg.Kind == kind && msg.Sender != callerID && !msg.IsProcessed {
			msg.IsProcessed = true
			copied := *msg
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeChatStore struct {
	mu   sync.Mutex
	msgs []model.RoomChatMessage
}

func (c *fakeChatStore) Save(_ context.Context, msg *model.RoomChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, *msg)
	return nil
}

type fakeMembership struct {
	groups map[int64][]model.User
	teams  map[int64][]model.User
}

func (f *fakeMembership) ResolveGroup(_ context.Context, groupID int64) ([]model.User, error) {
	return f.groups[groupID], nil
}

func (f *fakeMembership) ResolveTeam(_ context.Context, teamID int64) ([]model.User, error) {
	return f.teams[teamID], nil
}

type recordingPush struct {
	mu     sync.Mutex
	events []push.Event
	tokens [][]string
}

func (p *recordingPush) Send(_ context.Context, deviceTokens []string, ev push.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	p.tokens = append(p.tokens, deviceTokens)
	return nil
}

func strPtr(s string) *string {
	return &s
}
