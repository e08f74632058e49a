package errorutil

import (
	"errors"
	"fmt"

	"oip/checkout/internal/app/pkg/errorx"
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
	cause      error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable 创建可重试错误（存储故障、网络抖动等）
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Message:   message,
		Retryable: true,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Message:   message,
		Retryable: false,
	}
}

// Wrap 包装错误，按错误类别判断是否可重试
// 业务错误（护栏拒绝、非法状态迁移、找不到订单）重投也不会成功，标记为不可重试；
// 存储层错误交给消息队列的 TTR 机制重新投递
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errorx.IsBusiness(err) {
		return &Error{
			Code:       errorx.HTTPStatus(err),
			Message:    err.Error(),
			Retryable:  false,
			DevDetails: fmt.Sprintf("%+v", err),
			cause:      err,
		}
	}

	return &Error{
		Code:       500,
		Message:    err.Error(),
		Retryable:  true,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Wrap(err).Retryable
}
