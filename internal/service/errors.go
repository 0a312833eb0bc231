package service

import "errors"

// 业务层通用错误，handler 可根据错误类型映射到合适的 HTTP 状态码。
var (
	ErrDuplicateNickname  = errors.New("nickname already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyText          = errors.New("message text must not be empty")
	ErrTextTooLong        = errors.New("message text is too long")
	ErrWrongOldPassword   = errors.New("old password does not match")
)
