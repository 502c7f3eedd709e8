package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"call-relay-backend/internal/auth"
	"call-relay-backend/internal/model"
	"call-relay-backend/internal/service"
)

// CallHandler 통화 개설/입장/거절 핸들러
type CallHandler struct {
	rooms *service.RoomManager
}

// NewCallHandler CallHandler 생성
func NewCallHandler(rooms *service.RoomManager) *CallHandler {
	return &CallHandler{rooms: rooms}
}

// MakeCallRequest 1:1 통화 요청
type MakeCallRequest struct {
	CalleeUserID int64 `json:"callee_user_id"`
}

// MakeACall 1:1 통화 개설
func (h *CallHandler) MakeACall(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req MakeCallRequest
	if err := c.BodyParser(&req); err != nil || req.CalleeUserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "callee_user_id is required",
		})
	}

	caller := service.Caller{ID: claims.UserID, Name: claims.Nickname}
	room, err := h.rooms.StartOneToOne(c.Context(), caller, req.CalleeUserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "callee not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create call room",
		})
	}

	return c.JSON(room)
}

// MakeMMCallRequest 다자 통화 요청 (쉼표 구분 ID 목록)
type MakeMMCallRequest struct {
	CalleeUserIDList string `json:"callee_user_id_list"`
}

// MakeMMCall 다자 통화 개설
func (h *CallHandler) MakeMMCall(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req MakeMMCallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	calleeIDs := parseIDList(req.CalleeUserIDList)
	if len(calleeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "callee_user_id_list is required",
		})
	}

	caller := service.Caller{ID: claims.UserID, Name: claims.Nickname}
	token, err := h.rooms.StartManyToMany(c.Context(), caller, calleeIDs)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no callee could be resolved",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create call rooms",
		})
	}

	return c.JSON(fiber.Map{
		"roomtoken": token,
	})
}

// CallGroupTeamRequest 그룹/팀 통화 요청
type CallGroupTeamRequest struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// CallGroupOrTeam 그룹/팀 단체 통화 개설
//
// 멤버가 없으면 200에 successful=false로 응답한다. 구형 클라이언트가
// 처리하는 정상 결과라 NotFound로 보내지 않는다.
func (h *CallHandler) CallGroupOrTeam(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req CallGroupTeamRequest
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id and type are required",
		})
	}

	targetType, ok := model.ParseTargetType(req.Type)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be either group or team",
		})
	}

	caller := service.Caller{ID: claims.UserID, Name: claims.Nickname}
	token, err := h.rooms.StartGroupOrTeamCall(c.Context(), caller, targetType, req.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoMembers) {
			return c.JSON(fiber.Map{
				"successful": false,
				"message":    "Haven't found any user, Please invite user first.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create call rooms",
		})
	}

	return c.JSON(fiber.Map{
		"successful": true,
		"roomtoken":  token,
	})
}

// Room 1:1 룸 입장 (조회 + 필요 시 활성화)
func (h *CallHandler) Room(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	roomID := c.Params("id")
	result, err := h.rooms.JoinByID(c.Context(), claims.UserID, roomID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "room not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to join room",
		})
	}

	return c.JSON(result)
}

// MultiCallRoom 다자 룸 입장 (토큰 기반)
func (h *CallHandler) MultiCallRoom(c *fiber.Ctx) error {
	return h.joinByToken(c)
}

// MMCallRoom 다대다 룸 입장 (토큰 기반)
func (h *CallHandler) MMCallRoom(c *fiber.Ctx) error {
	return h.joinByToken(c)
}

func (h *CallHandler) joinByToken(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	token := c.Params("token")
	result, err := h.rooms.JoinByToken(c.Context(), claims.UserID, token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "room not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to join room",
		})
	}

	return c.JSON(result)
}

// GetParticipant 활성화된 룸의 상대방 조회 (아직이면 false)
func (h *CallHandler) GetParticipant(c *fiber.Ctx) error {
	roomID := c.Params("id")
	info, err := h.rooms.Participant(c.Context(), roomID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "room not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get participant",
		})
	}
	if info == nil {
		return c.JSON(false)
	}
	return c.JSON(info)
}

// Ignore 통화 거절
func (h *CallHandler) Ignore(c *fiber.Ctx) error {
	roomID := c.Params("id")
	if err := h.rooms.Ignore(c.Context(), roomID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "room not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to ignore room",
		})
	}
	return c.JSON(fiber.Map{
		"ok": true,
	})
}

// parseIDList 쉼표 구분 ID 문자열 파싱 (빈 항목과 비숫자는 건너뜀)
func parseIDList(s string) []int64 {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
