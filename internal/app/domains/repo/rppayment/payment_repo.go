package rppayment

import (
	"context"
	"errors"

	"oip/checkout/internal/app/domains/entity/etpayment"
)

// ErrDuplicatePaymentKey 网关支付键已被其他支付记录占用
var ErrDuplicatePaymentKey = errors.New("duplicate payment key")

// PaymentRepository 支付记录仓储接口
type PaymentRepository interface {
	// Create 创建支付记录
	Create(ctx context.Context, payment *etpayment.Payment) error

	// GetByPaymentKey 根据网关支付键查询，不存在返回 nil, nil
	GetByPaymentKey(ctx context.Context, paymentKey string) (*etpayment.Payment, error)

	// FindLatestByStatus 查询订单下指定状态的最新一条支付记录，不存在返回 nil, nil
	FindLatestByStatus(ctx context.Context, orderID string, status etpayment.PaymentStatus) (*etpayment.Payment, error)

	// UpdateState 按期望状态条件更新支付记录
	// 当前状态与 expected 不一致时返回 errorx.ErrConcurrentModification
	UpdateState(ctx context.Context, payment *etpayment.Payment, expected etpayment.PaymentStatus) error

	// ListByOrder 查询订单下全部支付记录（按创建时间倒序）
	ListByOrder(ctx context.Context, orderID string) ([]*etpayment.Payment, error)
}
