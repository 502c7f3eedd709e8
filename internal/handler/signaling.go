package handler

import (
	"github.com/gofiber/fiber/v2"

	"call-relay-backend/internal/auth"
	"call-relay-backend/internal/model"
	"call-relay-backend/internal/service"
)

// SignalHandler SDP/ICE 폴링 핸들러
//
// GetSDP/GetICE의 false 응답은 에러가 아니라 "대기 중 메시지 없음"이다.
// 클라이언트는 주기적으로 다시 폴링한다.
type SignalHandler struct {
	signals *service.SignalingService
}

// NewSignalHandler SignalHandler 생성
func NewSignalHandler(signals *service.SignalingService) *SignalHandler {
	return &SignalHandler{signals: signals}
}

// PostSDPRequest SDP 게시 요청
type PostSDPRequest struct {
	SDP       string `json:"sdp"`
	RoomToken string `json:"room_token"`
}

// PostSDP SDP 메시지 게시
func (h *SignalHandler) PostSDP(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req PostSDPRequest
	if err := c.BodyParser(&req); err != nil || req.SDP == "" || req.RoomToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sdp and room_token are required",
		})
	}

	id, err := h.signals.PostSDP(c.Context(), req.RoomToken, claims.UserID, req.SDP)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save sdp message",
		})
	}

	return c.JSON(fiber.Map{
		"message_id": id,
	})
}

// GetSDP 대기 중인 SDP 클레임 (없으면 false)
func (h *SignalHandler) GetSDP(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	roomToken := c.Query("room_token")
	if roomToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "room_token is required",
		})
	}

	result, err := h.signals.GetSDP(c.Context(), roomToken, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get sdp message",
		})
	}
	if result == nil {
		return c.JSON(false)
	}
	return c.JSON(result)
}

// PostICERequest ICE 게시 요청
type PostICERequest struct {
	Candidate string `json:"candidate"`
	Label     string `json:"label"`
	RoomToken string `json:"room_token"`
}

// PostICE ICE candidate 게시
func (h *SignalHandler) PostICE(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req PostICERequest
	if err := c.BodyParser(&req); err != nil || req.Candidate == "" || req.RoomToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "candidate and room_token are required",
		})
	}

	id, err := h.signals.PostICE(c.Context(), req.RoomToken, claims.UserID, req.Candidate, req.Label)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save ice candidate",
		})
	}

	return c.JSON(fiber.Map{
		"message_id": id,
	})
}

// GetICE 대기 중인 ICE candidate 클레임 (없으면 false)
func (h *SignalHandler) GetICE(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	roomToken := c.Query("room_token")
	if roomToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "room_token is required",
		})
	}

	result, err := h.signals.GetICE(c.Context(), roomToken, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get ice candidate",
		})
	}
	if result == nil {
		return c.JSON(false)
	}
	return c.JSON(result)
}

// SaveMessageRequest 통화 중 채팅 저장 요청
type SaveMessageRequest struct {
	RoomToken   string `json:"room_token"`
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
}

// SaveMessage 통화 중 채팅 메시지 저장
func (h *SignalHandler) SaveMessage(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req SaveMessageRequest
	if err := c.BodyParser(&req); err != nil || req.RoomToken == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "room_token and content are required",
		})
	}

	msg := &model.RoomChatMessage{
		RoomToken:   req.RoomToken,
		SenderID:    claims.UserID,
		SenderName:  claims.Nickname,
		MessageType: req.MessageType,
		Content:     req.Content,
	}
	if err := h.signals.SaveMessage(c.Context(), msg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save message",
		})
	}

	return c.JSON(fiber.Map{
		"ok": true,
	})
}
