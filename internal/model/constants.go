package model

// RoomStatus 룸 상태
//
// 상태는 앞으로만 움직인다: available → active → {active, ignored}.
// available로 되돌아가는 전이는 없다.
type RoomStatus string

const (
	RoomStatusAvailable RoomStatus = "available"
	RoomStatusActive    RoomStatus = "active"
	RoomStatusIgnored   RoomStatus = "ignored"
)

func (s RoomStatus) String() string {
	return string(s)
}

// RoomName 통화 토폴로지 라벨
type RoomName string

const (
	RoomNameSingle RoomName = "Single-Call-Room"
	RoomNameMM     RoomName = "MM-Call-Room"
	RoomNameMulti  RoomName = "Multi-Call-Room"
)

func (n RoomName) String() string {
	return string(n)
}

// SignalKind 시그널링 메시지 종류
type SignalKind string

const (
	SignalKindSDP SignalKind = "SDP"
	SignalKindICE SignalKind = "ICE"
)

func (k SignalKind) String() string {
	return string(k)
}

// TargetType 단체 통화 대상 종류
type TargetType string

const (
	TargetTypeGroup TargetType = "group"
	TargetTypeTeam  TargetType = "team"
)

func (t TargetType) String() string {
	return string(t)
}

// ParseTargetType 문자열을 TargetType으로 변환
func ParseTargetType(s string) (TargetType, bool) {
	switch TargetType(s) {
	case TargetTypeGroup:
		return TargetTypeGroup, true
	case TargetTypeTeam:
		return TargetTypeTeam, true
	default:
		return "", false
	}
}

// OnlineStatus 사용자 온라인 상태 값
const (
	UserStatusOnline  = "ONLINE"
	UserStatusOffline = "OFFLINE"
	UserStatusBusy    = "BUSY"
)
