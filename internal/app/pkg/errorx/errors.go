package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// 业务错误哨兵值，配合 errors.Is 判断错误类别
var (
	ErrInvalidOrderType       = errors.New("invalid order type")
	ErrOrderNotFound          = errors.New("order not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPersistence            = errors.New("persistence failure")

	ErrConcurrentModification = errors.New("order was modified concurrently")
	ErrPaymentAmountMismatch  = errors.New("payment amount does not match order total")
	ErrInvalidRefundAmount    = errors.New("invalid refund amount")
	ErrOrderNumberExhausted   = errors.New("order number generation retries exhausted")
	ErrInvalidOrderInput      = errors.New("invalid order input")
	ErrInvalidGroupBy         = errors.New("invalid settlement group by")
	ErrInvalidPeriod          = errors.New("invalid settlement period")
)

// InvalidOrderTypeError 订单类型被护栏拒绝
// 携带调用方上下文（服务名、时间）便于排查
type InvalidOrderTypeError struct {
	OrderType string
	Service   string
	At        time.Time
}

func (e *InvalidOrderTypeError) Error() string {
	return fmt.Sprintf("order type %q is not allowed (service=%s, at=%s)",
		e.OrderType, e.Service, e.At.Format(time.RFC3339))
}

func (e *InvalidOrderTypeError) Is(target error) bool {
	return target == ErrInvalidOrderType
}

// InvalidStateTransitionError 非法状态迁移
type InvalidStateTransitionError struct {
	OrderID string
	From    string
	Action  string
	Reason  string
}

func (e *InvalidStateTransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s order %s in state %s", e.Action, e.OrderID, e.From)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// NewInvalidTransition 创建非法状态迁移错误
func NewInvalidTransition(orderID, from, action, reason string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		OrderID: orderID,
		From:    from,
		Action:  action,
		Reason:  reason,
	}
}

// PaymentNotFoundError 找不到满足条件的支付记录
type PaymentNotFoundError struct {
	OrderID string
	Status  string
}

func (e *PaymentNotFoundError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("payment not found: order_id=%s", e.OrderID)
	}
	return fmt.Sprintf("%s payment not found: order_id=%s", e.Status, e.OrderID)
}

func (e *PaymentNotFoundError) Is(target error) bool {
	return target == ErrPaymentNotFound
}

// PersistenceError 存储层错误，对当前操作是致命的
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence 包装存储层错误；已是业务错误的直接透传
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsBusiness(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsBusiness 判断是否为调用方需要处理的业务错误（非存储故障）
func IsBusiness(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidOrderType),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrPaymentAmountMismatch),
		errors.Is(err, ErrInvalidRefundAmount),
		errors.Is(err, ErrInvalidOrderInput),
		errors.Is(err, ErrInvalidGroupBy),
		errors.Is(err, ErrInvalidPeriod):
		return true
	}
	return false
}

// HTTPStatus 将错误映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStateTransition), errors.Is(err, ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOrderType), errors.Is(err, ErrPaymentAmountMismatch),
		errors.Is(err, ErrInvalidRefundAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidOrderInput), errors.Is(err, ErrInvalidGroupBy),
		errors.Is(err, ErrInvalidPeriod):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// BusinessError 业务错误结构（HTTP 层响应使用）
type BusinessError struct {
	Code    int
	Message string
	Details []ErrorDetail
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string
	Info string
}

// Error 实现 error 接口
func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError 创建业务错误
func NewBusinessError(code int, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// FromError 将任意错误转换为 BusinessError
func FromError(err error) *BusinessError {
	var be *BusinessError
	if errors.As(err, &be) {
		return be
	}
	return NewBusinessError(HTTPStatus(err), err.Error())
}
