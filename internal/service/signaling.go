package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"call-relay-backend/internal/model"
)

// Mailbox 시그널링 메시지 보관함 계약
//
// Claim은 선택과 처리 표시가 한 연산이어야 한다. 같은 룸을 동시에
// 폴링하는 두 호출자가 같은 메시지를 받는 일은 없어야 한다.
// 가져갈 메시지가 없으면 (nil, nil)을 반환한다.
type Mailbox interface {
	Post(ctx context.Context, msg *model.SignalMessage) (int64, error)
	Claim(ctx context.Context, roomToken string, callerID int64, kind model.SignalKind) (*model.SignalMessage, error)
}

// ChatStore 통화 중 채팅 로그 계약
type ChatStore interface {
	Save(ctx context.Context, msg *model.RoomChatMessage) error
}

// SDPResult GetSDP 응답 (발신자 정보로 보강된 클레임 결과)
type SDPResult struct {
	SDP         string  `json:"sdp"`
	SenderName  string  `json:"sender_name"`
	SenderPhoto *string `json:"sender_photo,omitempty"`
}

// ICEResult GetICE 응답
type ICEResult struct {
	Candidate string `json:"candidate"`
	Label     string `json:"label"`
}

// SignalingService Mailbox 위의 얇은 프로토콜 계층
//
// SDP와 ICE를 kind 태그로 구분해 Post/Claim에 넘기고, 성공한 클레임에
// 발신자 표시 정보를 읽기 전용으로 덧붙인다.
type SignalingService struct {
	mailbox   Mailbox
	chats     ChatStore
	directory UserDirectory
}

// NewSignalingService SignalingService 생성
func NewSignalingService(mailbox Mailbox, chats ChatStore, directory UserDirectory) *SignalingService {
	return &SignalingService{
		mailbox:   mailbox,
		chats:     chats,
		directory: directory,
	}
}

// PostSDP SDP 메시지 게시
func (s *SignalingService) PostSDP(ctx context.Context, roomToken string, sender int64, sdp string) (int64, error) {
	return s.mailbox.Post(ctx, &model.SignalMessage{
		RoomToken: roomToken,
		Kind:      model.SignalKindSDP,
		Sender:    sender,
		SDP:       sdp,
	})
}

// GetSDP 대기 중인 SDP 메시지 클레임
//
// 없으면 (nil, nil). 클레임 후의 발신자 조회 실패는 메시지를 버리지
// 않기 위해 빈 발신자 정보로 응답한다.
func (s *SignalingService) GetSDP(ctx context.Context, roomToken string, callerID int64) (*SDPResult, error) {
	msg, err := s.mailbox.Claim(ctx, roomToken, callerID, model.SignalKindSDP)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	result := &SDPResult{SDP: msg.SDP}
	sender, err := s.directory.FindByID(ctx, msg.Sender)
	if err != nil {
		// 이미 클레임된 메시지라 버릴 수 없다. 보강 없이 전달.
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ sender lookup failed (message=%d): %v", msg.ID, err)
		}
		return result, nil
	}
	result.SenderName = sender.Nickname
	result.SenderPhoto = sender.ProfileImg
	return result, nil
}

// PostICE ICE candidate 게시
func (s *SignalingService) PostICE(ctx context.Context, roomToken string, sender int64, candidate, label string) (int64, error) {
	return s.mailbox.Post(ctx, &model.SignalMessage{
		RoomToken: roomToken,
		Kind:      model.SignalKindICE,
		Sender:    sender,
		Candidate: candidate,
		Label:     label,
	})
}

// GetICE 대기 중인 ICE candidate 클레임. 없으면 (nil, nil)
func (s *SignalingService) GetICE(ctx context.Context, roomToken string, callerID int64) (*ICEResult, error) {
	msg, err := s.mailbox.Claim(ctx, roomToken, callerID, model.SignalKindICE)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}
	return &ICEResult{Candidate: msg.Candidate, Label: msg.Label}, nil
}

// SaveMessage 통화 중 채팅 메시지 저장
func (s *SignalingService) SaveMessage(ctx context.Context, msg *model.RoomChatMessage) error {
	return s.chats.Save(ctx, msg)
}
