package push

import (
	"context"
	"fmt"
	"log"

	fcm "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"
)

// Event 푸시로 나가는 작은 이벤트 레코드
type Event struct {
	Type       string
	RoomToken  string
	RoomName   string
	CallerName string
}

// Sender fire-and-forget 푸시 발송기
//
// 전달 실패는 로그로만 남긴다. 통화 개설이 푸시 실패 때문에
// 실패해서는 안 된다.
type Sender interface {
	Send(ctx context.Context, deviceTokens []string, ev Event) error
}

// FCMSender Firebase Cloud Messaging v1 발송기
type FCMSender struct {
	svc       *fcm.Service
	projectID string
}

// NewFCMSender FCM 클라이언트 생성
func NewFCMSender(ctx context.Context, projectID, credentialsFile string) (*FCMSender, error) {
	svc, err := fcm.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create fcm service: %w", err)
	}
	return &FCMSender{svc: svc, projectID: projectID}, nil
}

// Send 디바이스 토큰 목록에 이벤트 발송
//
// 토큰 단위 실패는 로그만 남기고 계속 진행한다.
func (s *FCMSender) Send(ctx context.Context, deviceTokens []string, ev Event) error {
	parent := "projects/" + s.projectID
	data := map[string]string{
		"type":        ev.Type,
		"room_token":  ev.RoomToken,
		"room_name":   ev.RoomName,
		"caller_name": ev.CallerName,
	}

	for _, token := range deviceTokens {
		req := &fcm.SendMessageRequest{
			Message: &fcm.Message{
				Token: token,
				Data:  data,
				Notification: &fcm.Notification{
					Title: "Incoming call",
					Body:  ev.CallerName + " is calling",
				},
			},
		}
		if _, err := s.svc.Projects.Messages.Send(parent, req).Context(ctx).Do(); err != nil {
			log.Printf("⚠️ FCM send failed (token=%.12s...): %v", token, err)
		}
	}
	return nil
}

// LogSender FCM 미설정 시 사용하는 로그 전용 발송기
type LogSender struct{}

// Send 발송 내용을 로그로만 남긴다
func (LogSender) Send(_ context.Context, deviceTokens []string, ev Event) error {
	log.Printf("ℹ️ push (disabled): %s room=%s to %d device(s)", ev.Type, ev.RoomToken, len(deviceTokens))
	return nil
}
