package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrUnauthenticated  = errors.New("连接未完成身份认证")
	ErrPersistence      = errors.New("消息存储异常，请稍后重试")
	ErrContactNotFound  = errors.New("联系人不存在")
	ErrMissingIdentity  = errors.New("缺少用户身份")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:    BadRequest,
	ErrUnauthenticated: Unauthorized,
	ErrPersistence:     InternalServerError,
	ErrContactNotFound: NotFound,
	ErrMissingIdentity: Unauthorized,
	UnauthorizedError:  Unauthorized,
	UnExpectedError:    InternalServerError,
}
