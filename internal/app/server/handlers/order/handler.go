package order

import (
	"context"
	"time"

	"oip/checkout/internal/app/domains/modules/mdnotify"
	"oip/checkout/internal/app/domains/services/svorder"
	"oip/checkout/internal/app/pkg/logger"
)

// CallerHeader 调用方服务名
const CallerHeader = "X-Caller-Service"

// 等待支付结果的时长限制（秒）
const (
	DefaultWaitSeconds = 10
	MaxWaitSeconds     = 30
)

// PaymentWaiter 等待订单支付结果（mdnotify.NotifyModule 实现）
type PaymentWaiter interface {
	WaitForPayment(ctx context.Context, orderID string, timeout time.Duration) (*mdnotify.PaymentOutcome, error)
}

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	orderService *svorder.OrderService
	waiter       PaymentWaiter
	logger       logger.Logger
}

// NewOrderHandler 创建订单处理器实例；waiter 为 nil 时不支持等待支付结果
func NewOrderHandler(orderService *svorder.OrderService, waiter PaymentWaiter, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		waiter:       waiter,
		logger:       logger,
	}
}
