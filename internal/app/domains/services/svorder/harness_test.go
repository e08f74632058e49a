package svorder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oip/checkout/common/entity"
	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/modules/mdaudit"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/domains/modules/mdledger"
	"oip/checkout/internal/app/domains/modules/mdorder"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/domains/repo/rporderlog"
	"oip/checkout/internal/app/domains/repo/rppayment"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/infra/persistence/dbtest"
	"oip/checkout/internal/app/pkg/logger"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// sequenceNumbers 按顺序返回预设订单号，用尽后重复最后一个
type sequenceNumbers struct {
	mu      sync.Mutex
	numbers []string
	next    int
}

func (g *sequenceNumbers) Next(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.numbers[g.next]
	if g.next < len(g.numbers)-1 {
		g.next++
	}
	return n
}

type harness struct {
	db        *gorm.DB
	svc       *OrderService
	publisher *recordingPublisher
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	db := dbtest.New(t)
	guard, err := mdguard.NewGuard(mdguard.PolicyFromConfig("checkout-test", "GENERIC", []string{"BLOCKED_X"}))
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)

	svc := NewOrderService(
		mdorder.NewOrderModule(rporder.NewOrderRepository(db)),
		mdledger.NewLedgerModule(rppayment.NewPaymentRepository(db)),
		mdaudit.NewAuditModule(rporderlog.NewOrderLogRepository(db)),
		guard,
		rptx.NewTxManager(db),
		publisher,
		logger.NewNopLogger(),
		opts...,
	)

	return &harness{db: db, svc: svc, publisher: publisher}
}

func (h *harness) createOrder(t *testing.T, unitPrice int64, quantity int) *etorder.Order {
	t.Helper()
	result, err := h.svc.CreateOrder(context.Background(), newCreateInput("GENERIC", unitPrice, quantity))
	require.NoError(t, err)
	return result.Order
}

func (h *harness) paidOrder(t *testing.T, unitPrice int64, quantity int, paymentKey string) *etorder.Order {
	t.Helper()
	order := h.createOrder(t, unitPrice, quantity)
	_, err := h.svc.CompletePayment(context.Background(), order.ID, &CompletePaymentInput{
		PaymentKey: paymentKey,
		Method:     "card",
		ApprovedAt: testNow,
	})
	require.NoError(t, err)
	return order
}

func (h *harness) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := h.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (h *harness) logCount(t *testing.T, orderID, action string) int64 {
	t.Helper()
	return h.count(t, &entity.OrderLog{}, "order_id = ? AND action = ?", orderID, action)
}

func newCreateInput(orderType string, unitPrice int64, quantity int) *CreateOrderInput {
	return &CreateOrderInput{
		OrderType:  orderType,
		BuyerID:    "buyer-1",
		SellerID:   "seller-1",
		SupplierID: "supplier-1",
		Items: []*etorder.OrderItem{{
			ProductID:   "p-1",
			ProductName: "Widget",
			Quantity:    quantity,
			UnitPrice:   decimal.NewFromInt(unitPrice),
		}},
	}
}
