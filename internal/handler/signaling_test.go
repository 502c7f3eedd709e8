package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"call-relay-backend/internal/model"
)

func newSignalApp(env *testEnv, userID int64, nickname string) *fiber.App {
	h := NewSignalHandler(env.signals)
	app := fiber.New()
	api := app.Group("/api/signal", asUser(userID, nickname))
	api.Post("/sdp", h.PostSDP)
	api.Get("/sdp", h.GetSDP)
	api.Post("/ice", h.PostICE)
	api.Get("/ice", h.GetICE)
	api.Post("/message", h.SaveMessage)
	return app
}

func TestSDPEndpointRoundTrip(t *testing.T) {
	env := newTestEnv(model.User{ID: 1, Nickname: "u1"})

	resp, raw := doJSON(t, newSignalApp(env, 1, "u1"), http.MethodPost, "/api/signal/sdp",
		PostSDPRequest{SDP: "v=0 offer", RoomToken: "tok"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d, body %s", resp.StatusCode, raw)
	}
	var posted struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &posted); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if posted.MessageID == 0 {
		t.Error("message_id missing")
	}

	// 게시자 본인의 폴링은 false
	resp, raw = doJSON(t, newSignalApp(env, 1, "u1"), http.MethodGet, "/api/signal/sdp?room_token=tok", nil)
	if resp.StatusCode != http.StatusOK || string(raw) != "false" {
		t.Errorf("self poll: status=%d body=%s, want 200 false", resp.StatusCode, raw)
	}

	// 상대방의 폴링은 페이로드 + 발신자 정보
	resp, raw = doJSON(t, newSignalApp(env, 2, "u2"), http.MethodGet, "/api/signal/sdp?room_token=tok", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("peer poll status = %d", resp.StatusCode)
	}
	var result struct {
		SDP        string `json:"sdp"`
		SenderName string `json:"sender_name"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.SDP != "v=0 offer" || result.SenderName != "u1" {
		t.Errorf("unexpected result %+v", result)
	}

	// 두 번째 폴링은 false (정확히 한 번 전달)
	resp, raw = doJSON(t, newSignalApp(env, 2, "u2"), http.MethodGet, "/api/signal/sdp?room_token=tok", nil)
	if resp.StatusCode != http.StatusOK || string(raw) != "false" {
		t.Errorf("drained poll: status=%d body=%s, want 200 false", resp.StatusCode, raw)
	}
}

func TestSDPEndpointValidation(t *testing.T) {
	env := newTestEnv()
	app := newSignalApp(env, 1, "u1")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/signal/sdp", PostSDPRequest{SDP: "v=0"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing room_token: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/signal/sdp", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing query: status = %d, want 400", resp.StatusCode)
	}
}

func TestICEEndpointRoundTrip(t *testing.T) {
	env := newTestEnv()

	resp, raw := doJSON(t, newSignalApp(env, 1, "u1"), http.MethodPost, "/api/signal/ice",
		PostICERequest{Candidate: "candidate:1 udp", Label: "0", RoomToken: "tok"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d, body %s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, newSignalApp(env, 2, "u2"), http.MethodGet, "/api/signal/ice?room_token=tok", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("poll status = %d", resp.StatusCode)
	}
	var result struct {
		Candidate string `json:"candidate"`
		Label     string `json:"label"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Candidate != "candidate:1 udp" || result.Label != "0" {
		t.Errorf("unexpected result %+v", result)
	}

	resp, raw = doJSON(t, newSignalApp(env, 2, "u2"), http.MethodGet, "/api/signal/ice?room_token=tok", nil)
	if resp.StatusCode != http.StatusOK || string(raw) != "false" {
		t.Errorf("drained poll: status=%d body=%s, want 200 false", resp.StatusCode, raw)
	}
}

func TestSaveMessageEndpoint(t *testing.T) {
	env := newTestEnv()
	app := newSignalApp(env, 1, "u1")

	resp, raw := doJSON(t, app, http.MethodPost, "/api/signal/message",
		SaveMessageRequest{RoomToken: "tok", MessageType: "text", Content: "hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	env.chats.mu.Lock()
	defer env.chats.mu.Unlock()
	if len(env.chats.msgs) != 1 {
		t.Fatalf("chat messages = %d, want 1", len(env.chats.msgs))
	}
	msg := env.chats.msgs[0]
	if msg.SenderID != 1 || msg.SenderName != "u1" || msg.Content != "hello" {
		t.Errorf("unexpected stored message %+v", msg)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/signal/message", SaveMessageRequest{RoomToken: "tok"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty content: status = %d, want 400", resp.StatusCode)
	}
}
