package mdnotify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/logger"
)

// memoryBroker 进程内 Broker，订阅后才能收到消息
type memoryBroker struct {
	mu         sync.Mutex
	channels   map[string][]chan []byte
	subscribed chan string
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{
		channels:   make(map[string][]chan []byte),
		subscribed: make(chan string, 8),
	}
}

func (b *memoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.channels[channel] {
		ch <- payload
	}
	return nil
}

func (b *memoryBroker) Subscribe(_ context.Context, channel string) (Subscription, error) {
	ch := make(chan []byte, 8)
	b.mu.Lock()
	b.channels[channel] = append(b.channels[channel], ch)
	b.mu.Unlock()
	b.subscribed <- channel
	return &memorySubscription{ch: ch}, nil
}

type memorySubscription struct {
	ch chan []byte
}

func (s *memorySubscription) Next(ctx context.Context) ([]byte, error) {
	select {
	case data := <-s.ch:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memorySubscription) Close() error { return nil }

type stubOrders struct {
	order *etorder.Order
}

func (s *stubOrders) GetOrder(_ context.Context, orderID string) (*etorder.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, errorx.ErrOrderNotFound
	}
	return s.order, nil
}

func pendingOrder() *etorder.Order {
	return &etorder.Order{
		ID:            "order-1",
		Status:        etorder.OrderStatusCreated,
		PaymentStatus: etorder.PaymentStatusPending,
	}
}

func TestChannel(t *testing.T) {
	m := NewNotifyModule(newMemoryBroker(), &stubOrders{}, "", logger.NewNopLogger())
	assert.Equal(t, "order:events:order-1", m.Channel("order-1"))
}

func TestWaitForPayment_ReturnsImmediatelyWhenAlreadyPaid(t *testing.T) {
	order := pendingOrder()
	require.NoError(t, order.MarkPaid(time.Now()))
	m := NewNotifyModule(newMemoryBroker(), &stubOrders{order: order}, "", logger.NewNopLogger())

	outcome, err := m.WaitForPayment(context.Background(), "order-1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, etorder.OrderStatusPaid, outcome.Status)
	assert.Empty(t, outcome.Event)
}

func TestWaitForPayment_WakesOnCompletedEvent(t *testing.T) {
	broker := newMemoryBroker()
	m := NewNotifyModule(broker, &stubOrders{order: pendingOrder()}, "", logger.NewNopLogger())
	ctx := context.Background()

	go func() {
		<-broker.subscribed
		_ = m.Handle(ctx, events.PaymentInitiated{Base: events.Base{Order: "order-1"}})
		_ = m.Handle(ctx, events.PaymentCompleted{Base: events.Base{Order: "order-1"}, PaymentKey: "pk1"})
	}()

	outcome, err := m.WaitForPayment(ctx, "order-1", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, events.TypePaymentCompleted, outcome.Event)
	assert.Equal(t, etorder.OrderStatusPaid, outcome.Status)
	assert.Equal(t, etorder.PaymentStatusPaid, outcome.PaymentStatus)
}

func TestWaitForPayment_WakesOnFailedEvent(t *testing.T) {
	broker := newMemoryBroker()
	m := NewNotifyModule(broker, &stubOrders{order: pendingOrder()}, "", logger.NewNopLogger())
	ctx := context.Background()

	go func() {
		<-broker.subscribed
		_ = m.Handle(ctx, events.PaymentFailed{Base: events.Base{Order: "order-1"}, Reason: "insufficient funds"})
	}()

	outcome, err := m.WaitForPayment(ctx, "order-1", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, events.TypePaymentFailed, outcome.Event)
	assert.Equal(t, etorder.OrderStatusCreated, outcome.Status)
	assert.Equal(t, "insufficient funds", outcome.Reason)
}

func TestWaitForPayment_Timeout(t *testing.T) {
	m := NewNotifyModule(newMemoryBroker(), &stubOrders{order: pendingOrder()}, "", logger.NewNopLogger())

	_, err := m.WaitForPayment(context.Background(), "order-1", 20*time.Millisecond)
	assert.True(t, errors.Is(err, ErrWaitTimeout))
}

func TestWaitForPayment_UnknownOrder(t *testing.T) {
	m := NewNotifyModule(newMemoryBroker(), &stubOrders{}, "", logger.NewNopLogger())

	_, err := m.WaitForPayment(context.Background(), "missing", time.Second)
	assert.True(t, errors.Is(err, errorx.ErrOrderNotFound))
}
