package service

import "errors"

var (
	// ErrNotFound 참조한 사용자/룸/토큰이 존재하지 않음
	ErrNotFound = errors.New("not found")

	// ErrNoMembers 팬아웃 결과 수신자가 0명 (에러가 아닌 정상 업무 결과)
	ErrNoMembers = errors.New("no members to call")
)
