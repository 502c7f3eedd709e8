package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 상태 키 TTL. 클라이언트가 상태를 갱신하지 않으면 만료되어
// 조회 시 OFFLINE으로 취급된다.
const statusTTL = 60 * time.Second

// Data Redis에 저장되는 상태 데이터
type Data struct {
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

// Manager 온라인 상태 미러 관리자
type Manager struct {
	client *redis.Client
}

// NewManager 생성자. Redis에 닿지 않으면 에러를 반환한다.
func NewManager(addr string, password string, db int) (*Manager, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Manager{client: rdb}, nil
}

// getUserKey 키 생성 유틸
func (m *Manager) getUserKey(userID int64) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

// SetStatus 상태 기록 (TTL 부여)
func (m *Manager) SetStatus(ctx context.Context, userID int64, status string) error {
	data := Data{
		UserID:    userID,
		Status:    status,
		UpdatedAt: time.Now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return m.client.Set(ctx, m.getUserKey(userID), jsonData, statusTTL).Err()
}

// GetStatus 상태 조회. 키가 없거나 만료됐으면 OFFLINE
func (m *Manager) GetStatus(ctx context.Context, userID int64) (string, error) {
	val, err := m.client.Get(ctx, m.getUserKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "OFFLINE", nil
	}
	if err != nil {
		return "", err
	}

	var data Data
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", err
	}
	return data.Status, nil
}

// Ping 연결 확인 (헬스체크용)
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}
