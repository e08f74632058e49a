package mdnotify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/infra/persistence/redis"
	"oip/checkout/internal/app/pkg/logger"
)

// DefaultChannelPrefix 订单事件频道前缀
const DefaultChannelPrefix = "order:events"

// ErrWaitTimeout 等待支付结果超时
var ErrWaitTimeout = errors.New("timed out waiting for payment result")

// Subscription 频道订阅
type Subscription interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Broker 事件广播通道
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// OrderReader 查询订单当前状态
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*etorder.Order, error)
}

// PaymentOutcome 支付等待结果
type PaymentOutcome struct {
	OrderID       string
	Status        etorder.OrderStatus
	PaymentStatus etorder.PaymentStatus
	Event         events.Type // 由事件唤醒时非空
	Reason        string      // 支付失败原因
}

// NotifyModule 订单事件通知模块
// 职责：
// 1. 作为事件订阅者，把领域事件广播到 order:events:{orderID}
// 2. Smart Wait：订阅订单频道，等待支付结果
type NotifyModule struct {
	broker Broker
	orders OrderReader
	prefix string
	logger logger.Logger
}

// NewNotifyModule 创建通知模块
func NewNotifyModule(broker Broker, orders OrderReader, prefix string, log logger.Logger) *NotifyModule {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &NotifyModule{
		broker: broker,
		orders: orders,
		prefix: prefix,
		logger: log,
	}
}

// Channel 频道命名规则：{prefix}:{orderID}
func (m *NotifyModule) Channel(orderID string) string {
	return fmt.Sprintf("%s:%s", m.prefix, orderID)
}

// Handle 实现 events.Subscriber
func (m *NotifyModule) Handle(ctx context.Context, e events.Event) error {
	payload, err := events.Encode(e)
	if err != nil {
		return err
	}
	return m.broker.Publish(ctx, m.Channel(e.OrderID()), payload)
}

// WaitForPayment 等待订单支付结果（Smart Wait）
// 1. 先订阅频道，再读取订单当前状态，避免错过订阅前的事件
// 2. 订单已不在待支付状态时直接返回
// 3. 否则等待 PAYMENT_COMPLETED / PAYMENT_FAILED / ORDER_CANCELLED 事件
func (m *NotifyModule) WaitForPayment(ctx context.Context, orderID string, timeout time.Duration) (*PaymentOutcome, error) {
	sub, err := m.broker.Subscribe(ctx, m.Channel(orderID))
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	order, err := m.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanPay() {
		return &PaymentOutcome{
			OrderID:       order.ID,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
		}, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		data, err := sub.Next(waitCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: order_id=%s", ErrWaitTimeout, orderID)
			}
			return nil, err
		}

		e, err := events.Decode(data)
		if err != nil {
			m.logger.WarnContext(ctx, "skip undecodable order event", "order_id", orderID, "error", err)
			continue
		}

		switch e.EventType() {
		case events.TypePaymentCompleted:
			return &PaymentOutcome{
				OrderID:       orderID,
				Status:        etorder.OrderStatusPaid,
				PaymentStatus: etorder.PaymentStatusPaid,
				Event:         e.EventType(),
			}, nil
		case events.TypePaymentFailed:
			outcome := &PaymentOutcome{
				OrderID:       orderID,
				Status:        etorder.OrderStatusCreated,
				PaymentStatus: etorder.PaymentStatusPending,
				Event:         e.EventType(),
			}
			if failed, ok := e.(*events.PaymentFailed); ok {
				outcome.Reason = failed.Reason
			}
			return outcome, nil
		case events.TypeOrderCancelled:
			return &PaymentOutcome{
				OrderID:       orderID,
				Status:        etorder.OrderStatusCancelled,
				PaymentStatus: etorder.PaymentStatusPending,
				Event:         e.EventType(),
			}, nil
		}
	}
}

// RedisBroker 基于 Redis Pub/Sub 的 Broker
type RedisBroker struct {
	client *redis.PubSubClient
}

// NewRedisBroker 创建 Redis Broker
func NewRedisBroker(client *redis.PubSubClient) *RedisBroker {
	return &RedisBroker{client: client}
}

// Publish 发布消息
func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload)
}

// Subscribe 订阅频道
func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	sub, err := b.client.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
