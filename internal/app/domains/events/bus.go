package events

import (
	"context"
	"sync"

	"oip/checkout/internal/app/pkg/logger"
)

// Subscriber 事件订阅者
type Subscriber interface {
	Handle(ctx context.Context, e Event) error
}

// SubscriberFunc 函数适配器
type SubscriberFunc func(ctx context.Context, e Event) error

func (f SubscriberFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, evts ...Event)
}

// Bus 进程内事件总线
// 事件在事务提交后发布，订阅者的错误只记录日志，不影响已提交的变更
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      logger.Logger
}

// NewBus 创建事件总线
func NewBus(log logger.Logger) *Bus {
	return &Bus{logger: log}
}

// Subscribe 注册订阅者
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

// Publish 依次投递事件给全部订阅者
func (b *Bus) Publish(ctx context.Context, evts ...Event) {
	b.mu.RLock()
	subscribers := make([]Subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, e := range evts {
		for _, s := range subscribers {
			if err := s.Handle(ctx, e); err != nil {
				b.logger.WarnContext(ctx, "event subscriber failed",
					"event_type", string(e.EventType()),
					"order_id", e.OrderID(),
					"error", err)
			}
		}
	}
}
