package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"call-relay-backend/internal/auth"
	"call-relay-backend/internal/model"
	"call-relay-backend/internal/push"
	"call-relay-backend/internal/service"
)

// 핸들러 테스트 공통 뼈대. 실제 저장소 대신 계약을 지키는 인메모리
// 구현을 서비스에 주입하고, 인증 미들웨어 대신 고정 클레임을 심는다.

type stubRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newStubRoomStore() *stubRoomStore {
	return &stubRoomStore{rooms: make(map[string]*model.Room)}
}

func (s *stubRoomStore) Save(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *room
	s.rooms[room.ID] = &copied
	return nil
}

func (s *stubRoomStore) AddMany(_ context.Context, rooms []model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rooms {
		copied := rooms[i]
		s.rooms[copied.ID] = &copied
	}
	return nil
}

func (s *stubRoomStore) GetByID(_ context.Context, id string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *room
	return &copied, nil
}

func (s *stubRoomStore) GetByTokenAndParticipant(_ context.Context, token string, participantID int64) (*model.Room, error) {
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

func (s *stubRoomStore) GetAnyByToken(_ context.Context, token string) (*model.Room, error) {
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

func (s *stubRoomStore) Activate(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.Status == model.RoomStatusActive {
		return false, nil
	}
	room.Status = model.RoomStatusActive
	room.LastUpdated = time.Now()
	return true, nil
}

func (s *stubRoomStore) SetStatus(_ context.Context, id string, status model.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	room.Status = status
	return nil
}

type stubDirectory struct {
	users map[int64]model.User
}

func (d *stubDirectory) FindByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (d *stubDirectory) FindAllByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if user, ok := d.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (d *stubDirectory) UpdateStatus(_ context.Context, id int64, _ string) error {
	if _, ok := d.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type stubMailbox struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*model.SignalMessage
}

func (m *stubMailbox) Post(_ context.Context, msg *model.SignalMessage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	copied := *msg
	m.msgs = append(m.msgs, &copied)
	return msg.ID, nil
}

func (m *stubMailbox) Claim(_ context.Context, roomToken string, callerID int64, kind model.SignalKind) (*model.SignalMessage, error) {
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

type stubChatStore struct {
	mu   sync.Mutex
	msgs []model.RoomChatMessage
}

func (c *stubChatStore) Save(_ context.Context, msg *model.RoomChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, *msg)
	return nil
}

type stubMembership struct {
	groups map[int64][]model.User
	teams  map[int64][]model.User
}

func (f *stubMembership) ResolveGroup(_ context.Context, groupID int64) ([]model.User, error) {
	return f.groups[groupID], nil
}

func (f *stubMembership) ResolveTeam(_ context.Context, teamID int64) ([]model.User, error) {
	return f.teams[teamID], nil
}

type nopPush struct{}

func (nopPush) Send(context.Context, []string, push.Event) error { return nil }

type testEnv struct {
	rooms   *stubRoomStore
	mailbox *stubMailbox
	chats   *stubChatStore
	manager *service.RoomManager
	signals *service.SignalingService
}

func newTestEnv(users ...model.User) *testEnv {
	dir := &stubDirectory{users: make(map[int64]model.User)}
	for _, u := range users {
		dir.users[u.ID] = u
	}
	rooms := newStubRoomStore()
	mailbox := &stubMailbox{}
	chats := &stubChatStore{}
	members := &stubMembership{}
	return &testEnv{
		rooms:   rooms,
		mailbox: mailbox,
		chats:   chats,
		manager: service.NewRoomManager(rooms, dir, service.NewCallFanout(members), nopPush{}),
		signals: service.NewSignalingService(mailbox, chats, dir),
	}
}

// asUser 고정 클레임을 심는 테스트용 미들웨어
func asUser(userID int64, nickname string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("claims", &auth.Claims{
			UserID:   userID,
			Email:    nickname + "@example.com",
			Nickname: nickname,
		})
		return c.Next()
	}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}
