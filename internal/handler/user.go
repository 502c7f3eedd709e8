package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"call-relay-backend/internal/auth"
	"call-relay-backend/internal/model"
	"call-relay-backend/internal/store"
)

// UserHandler 유저 핸들러
type UserHandler struct {
	db        *gorm.DB
	directory *store.Directory
}

// NewUserHandler UserHandler 생성
func NewUserHandler(db *gorm.DB, directory *store.Directory) *UserHandler {
	return &UserHandler{db: db, directory: directory}
}

// GetProfile 내 프로필 조회
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	user, err := h.directory.FindByID(c.Context(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
		})
	}

	return c.JSON(UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Nickname:     user.Nickname,
		ProfileImg:   user.ProfileImg,
		OnlineStatus: user.OnlineStatus,
	})
}

// UpdateStatusRequest 온라인 상태 변경 요청
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOnlineStatus 온라인 상태 변경
func (h *UserHandler) UpdateOnlineStatus(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	switch req.Status {
	case model.UserStatusOnline, model.UserStatusOffline, model.UserStatusBusy:
		// 유효한 상태
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be one of ONLINE, OFFLINE, BUSY",
		})
	}

	if err := h.directory.UpdateStatus(c.Context(), claims.UserID, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update status",
		})
	}

	return c.JSON(fiber.Map{
		"status": req.Status,
	})
}

// RegisterDeviceRequest 디바이스 토큰 등록 요청
type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token"`
}

// RegisterDevice 푸시 디바이스 토큰 등록 (빈 값이면 해제)
func (h *UserHandler) RegisterDevice(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var token *string
	if req.DeviceToken != "" {
		token = &req.DeviceToken
	}

	if err := h.directory.UpdateDeviceToken(c.Context(), claims.UserID, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to register device",
		})
	}

	return c.JSON(fiber.Map{
		"ok": true,
	})
}

// SearchUsersResponse 유저 검색 응답
type SearchUsersResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

// SearchUsers 유저 검색 (닉네임 또는 이메일)
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "search query is required",
		})
	}

	// 최소 2글자 이상
	if len(query) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "search query must be at least 2 characters",
		})
	}

	// 검색 쿼리 생성 (ILIKE로 대소문자 무시)
	searchPattern := "%" + query + "%"

	var users []model.User
	var total int64

	// 닉네임 또는 이메일로 검색 (본인 제외, 최대 10명)
	result := h.db.Model(&model.User{}).
		Where("id != ?", claims.UserID).
		Where("nickname ILIKE ? OR email ILIKE ?", searchPattern, searchPattern).
		Count(&total)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to search users",
		})
	}

	result = h.db.
		Where("id != ?", claims.UserID).
		Where("nickname ILIKE ? OR email ILIKE ?", searchPattern, searchPattern).
		Limit(10).
		Find(&users)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to search users",
		})
	}

	// 응답 변환
	userResponses := make([]UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = UserResponse{
			ID:           user.ID,
			Email:        user.Email,
			Nickname:     user.Nickname,
			ProfileImg:   user.ProfileImg,
			OnlineStatus: user.OnlineStatus,
		}
	}

	return c.JSON(SearchUsersResponse{
		Users: userResponses,
		Total: total,
	})
}
