package model

import (
	"time"
)

// User 사용자
type User struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email      string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Nickname   string  `gorm:"type:varchar(100);not null" json:"nickname"`
	ProfileImg *string `gorm:"type:text" json:"profile_img,omitempty"`
	Provider   *string `gorm:"type:varchar(50)" json:"provider,omitempty"`
	ProviderID *string `gorm:"type:varchar(255)" json:"provider_id,omitempty"`

	// 푸시 알림용 디바이스 토큰 (미등록 시 null)
	DeviceToken *string `gorm:"type:varchar(512)" json:"device_token,omitempty"`

	// Presence & Status
	OnlineStatus string    `gorm:"type:varchar(20);default:'OFFLINE'" json:"online_status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Groups []UserGroup `gorm:"foreignKey:UserID" json:"groups,omitempty"`
	Teams  []UserTeam  `gorm:"foreignKey:UserID" json:"teams,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Room 통화 참가자별 룸 행
//
// 다자 통화는 참가자마다 행이 하나씩 생성되고 같은 Token을 공유한다.
// 1:1 통화는 행 하나를 양쪽이 공유한다 (ID == Token).
// 행은 삭제하지 않고 통화 이력으로 보존한다.
type Room struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Token           string     `gorm:"type:varchar(64);index;not null" json:"token"`
	Name            string     `gorm:"type:varchar(50);not null" json:"name"`
	Status          RoomStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	OwnerID         int64      `gorm:"not null" json:"owner_id"`
	OwnerName       string     `gorm:"type:varchar(100);not null" json:"owner_name"`
	ParticipantID   int64      `gorm:"index;not null" json:"participant_id"`
	ParticipantName string     `gorm:"type:varchar(100);not null" json:"participant_name"`

	// 표시용 전체 명단 (쉼표 구분, 발신자가 첫 번째). 라우팅에는 쓰지 않는다.
	Participants string    `gorm:"type:text;not null" json:"participants"`
	LastUpdated  time.Time `gorm:"not null" json:"last_updated"`
}

func (Room) TableName() string {
	return "rooms"
}

// SignalMessage 시그널링 메시지 (SDP / ICE 공용)
//
// IsProcessed는 최초 클레임에서 정확히 한 번 true로 바뀐다.
// 행은 삭제하지 않는다. 보존은 운영 측 외부 아카이빙에 맡긴다.
type SignalMessage struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomToken string     `gorm:"type:varchar(64);index:idx_signal_claim,priority:1;not null" json:"room_token"`
	Kind      SignalKind `gorm:"type:varchar(10);not null" json:"kind"`
	Sender    int64      `gorm:"not null" json:"sender"`

	// SDP 페이로드 (Kind == SDP)
	SDP string `gorm:"type:text" json:"sdp,omitempty"`

	// ICE 페이로드 (Kind == ICE)
	Candidate string `gorm:"type:text" json:"candidate,omitempty"`
	Label     string `gorm:"type:varchar(50)" json:"label,omitempty"`

	IsProcessed bool      `gorm:"index:idx_signal_claim,priority:2;not null;default:false" json:"is_processed"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_signal_claim,priority:3" json:"created_at"`
}

func (SignalMessage) TableName() string {
	return "signal_messages"
}

// RoomChatMessage 통화 중 채팅 로그
type RoomChatMessage struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomToken   string    `gorm:"type:varchar(64);index;not null" json:"room_token"`
	SenderID    int64     `gorm:"not null" json:"sender_id"`
	SenderName  string    `gorm:"type:varchar(100);not null" json:"sender_name"`
	MessageType string    `gorm:"type:varchar(20);not null" json:"message_type"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RoomChatMessage) TableName() string {
	return "room_chat_messages"
}

// Group 그룹
type Group struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	OwnerID     int64     `gorm:"not null" json:"owner_id"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Members []UserGroup `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

// Team 팀
type Team struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	OwnerID     int64     `gorm:"not null" json:"owner_id"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Members []UserTeam `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (Team) TableName() string {
	return "teams"
}

// UserGroup 그룹 멤버십
type UserGroup struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID  int64     `gorm:"index;not null" json:"group_id"`
	UserID   int64     `gorm:"index;not null" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}

// UserTeam 팀 멤버십
type UserTeam struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TeamID   int64     `gorm:"index;not null" json:"team_id"`
	UserID   int64     `gorm:"index;not null" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserTeam) TableName() string {
	return "user_teams"
}
