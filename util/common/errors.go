package common

import (
	"errors"
	"fmt"
	"strings"
)

// =================================================================
// 错误码常量
// =================================================================

const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDuplicate        = "DUPLICATE"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeConnectionFailed = "CONNECTION_FAILED"
	ErrCodeExternal         = "EXTERNAL_API_ERROR"
	ErrCodeInternal         = "INTERNAL"
)

// =================================================================
// ServiceError 服务层错误包装
// =================================================================

type ServiceError struct {
	Op      string         // 操作名称，如 "ClientService.AddToServer"
	Code    string         // 错误码，如 "NOT_FOUND"
	Err     error          // 原始错误
	Context map[string]any // 上下文信息
}

func (e *ServiceError) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString("[")
		sb.WriteString(e.Op)
		sb.WriteString("] ")
	}
	if e.Code != "" {
		sb.WriteString("(")
		sb.WriteString(e.Code)
		sb.WriteString(") ")
	}
	if e.Err != nil {
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError 创建服务层错误
func NewServiceError(op string, err error) *ServiceError {
	return &ServiceError{
		Op:  op,
		Err: err,
	}
}

// WithCode 添加错误码
func (e *ServiceError) WithCode(code string) *ServiceError {
	e.Code = code
	return e
}

// WithContext 添加上下文信息
func (e *ServiceError) WithContext(key string, val any) *ServiceError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = val
	return e
}

// Wrap 快速包装错误
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewServiceError(op, err)
}

// Wrapf 带格式化消息包装错误
func Wrapf(op string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return NewServiceError(op, fmt.Errorf("%s: %w", msg, err))
}

// =================================================================
// 通用错误定义
// =================================================================

var (
	// ErrNotFound 资源未找到
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate 资源已存在
	ErrDuplicate = errors.New("resource already exists")

	// ErrInvalidInput 无效输入
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized 未授权
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal 内部错误
	ErrInternal = errors.New("internal error")
)

// =================================================================
// 面板通信相关错误
// =================================================================

var (
	// ErrConnectionFailed 面板不可达或返回非 2xx
	ErrConnectionFailed = errors.New("panel connection failed")

	// ErrExternalAPI 面板可达但返回 success=false
	ErrExternalAPI = errors.New("panel api error")

	// ErrSyncInProgress 同一服务器的入站同步正在进行
	ErrSyncInProgress = errors.New("server sync already in progress")
)

// =================================================================
// 构造辅助函数
// =================================================================

// NotFound 构造 "<resource> with id "<id>" not found" 错误
func NotFound(op, resource string, id any) error {
	return NewServiceError(op, fmt.Errorf("%w: %s with id %q", ErrNotFound, resource, fmt.Sprint(id))).
		WithCode(ErrCodeNotFound).
		WithContext("resource", resource).
		WithContext("id", id)
}

// Duplicate 构造 "<resource> with <field> "<value>" already exists" 错误
func Duplicate(op, resource, field string, value any) error {
	return NewServiceError(op, fmt.Errorf("%w: %s with %s %q", ErrDuplicate, resource, field, fmt.Sprint(value))).
		WithCode(ErrCodeDuplicate).
		WithContext("resource", resource).
		WithContext("field", field)
}

// InvalidInput 构造输入校验错误
func InvalidInput(op string, format string, args ...any) error {
	return NewServiceError(op, fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))).
		WithCode(ErrCodeInvalidInput)
}

// =================================================================
// 辅助函数
// =================================================================

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransportError 检查是否为面板连接类错误（可重试）
func IsTransportError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}
