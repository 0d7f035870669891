package common

import (
	"errors"

	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
)

// Recover 必须直接 defer 调用，恢复 panic 并记录日志
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}

// Combine 合并多个错误，忽略 nil
func Combine(errs ...error) error {
	return errors.Join(errs...)
}

// GetErrorCode 从错误中提取错误码
func GetErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrDuplicate):
		return ErrCodeDuplicate
	case errors.Is(err, ErrInvalidInput):
		return ErrCodeInvalidInput
	case errors.Is(err, ErrUnauthorized):
		return ErrCodeUnauthorized
	case errors.Is(err, ErrSyncInProgress):
		return ErrCodeConflict
	case errors.Is(err, ErrConnectionFailed):
		return ErrCodeConnectionFailed
	case errors.Is(err, ErrExternalAPI):
		return ErrCodeExternal
	default:
		return ErrCodeInternal
	}
}
