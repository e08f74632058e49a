package svorder

import (
	"context"
	"time"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/entity/etprimitive"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/modules/mdaudit"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/domains/modules/mdledger"
	"oip/checkout/internal/app/domains/modules/mdorder"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/pkg/idgen"
	"oip/checkout/internal/app/pkg/keylock"
	"oip/checkout/internal/app/pkg/logger"
	"oip/checkout/internal/app/pkg/metrics"
)

// DefaultNumberRetryLimit 订单号冲突最大重试次数
const DefaultNumberRetryLimit = 5

// OrderService 订单服务，负责订单生命周期编排
// 状态机: CREATED -> PAID -> REFUNDED，CREATED -> CANCELLED
// 同一订单的变更: 进程内按订单加锁 + 事务内行锁 + 条件更新
type OrderService struct {
	orderModule *mdorder.OrderModule
	ledger      *mdledger.LedgerModule
	audit       *mdaudit.AuditModule
	guard       *mdguard.Guard
	txManager   rptx.TxManager
	publisher   events.Publisher
	logger      logger.Logger

	numbers    idgen.Generator
	locks      *keylock.KeyLock
	retryLimit int
	now        func() time.Time
}

// Option 服务可选配置
type Option func(*OrderService)

// WithNumberGenerator 指定订单号生成器
func WithNumberGenerator(g idgen.Generator) Option {
	return func(s *OrderService) { s.numbers = g }
}

// WithNumberRetryLimit 指定订单号冲突重试次数
func WithNumberRetryLimit(n int) Option {
	return func(s *OrderService) {
		if n > 0 {
			s.retryLimit = n
		}
	}
}

// WithClock 指定时钟（测试使用）
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService 创建订单服务实例
func NewOrderService(
	orderModule *mdorder.OrderModule,
	ledger *mdledger.LedgerModule,
	audit *mdaudit.AuditModule,
	guard *mdguard.Guard,
	txManager rptx.TxManager,
	publisher events.Publisher,
	logger logger.Logger,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		orderModule: orderModule,
		ledger:      ledger,
		audit:       audit,
		guard:       guard,
		txManager:   txManager,
		publisher:   publisher,
		logger:      logger,
		numbers:     idgen.NewOrderNumberGenerator(),
		locks:       keylock.New(),
		retryLimit:  DefaultNumberRetryLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate 串行执行同一订单的变更，fn 在事务中运行
func (s *OrderService) mutate(ctx context.Context, op, orderID string, fn func(txCtx context.Context) error) error {
	start := time.Now()
	defer func() {
		metrics.MutationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	unlock := s.locks.Lock(orderID)
	defer unlock()

	return s.txManager.WithinTx(ctx, fn)
}

// publish 事务提交后发布事件
func (s *OrderService) publish(ctx context.Context, evts ...events.Event) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	s.publisher.Publish(ctx, evts...)
}

// FindByID 查询订单
func (s *OrderService) FindByID(ctx context.Context, orderID string) (*etorder.Order, error) {
	return s.orderModule.GetOrder(ctx, orderID)
}

// FindByOrderNumber 根据订单号查询
func (s *OrderService) FindByOrderNumber(ctx context.Context, orderNumber string) (*etorder.Order, error) {
	return s.orderModule.GetOrderByNumber(ctx, orderNumber)
}

// FindByBuyerID 查询买家订单（最新在前）
func (s *OrderService) FindByBuyerID(ctx context.Context, buyerID string, page etprimitive.Pagination) ([]*etorder.Order, int64, error) {
	return s.orderModule.ListByBuyer(ctx, buyerID, page)
}

// FindAll 按条件分页查询订单
func (s *OrderService) FindAll(ctx context.Context, filter rporder.ListFilter, page etprimitive.Pagination) ([]*etorder.Order, int64, error) {
	return s.orderModule.ListOrders(ctx, filter, page)
}

// GetOrderLogs 查询订单审计日志（最新在前），订单不存在返回 ErrOrderNotFound
func (s *OrderService) GetOrderLogs(ctx context.Context, orderID string) ([]*etorderlog.OrderLog, error) {
	if _, err := s.orderModule.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.audit.ListByOrder(ctx, orderID)
}

// ListPayments 查询订单的支付记录
func (s *OrderService) ListPayments(ctx context.Context, orderID string) ([]*etpayment.Payment, error) {
	if _, err := s.orderModule.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.ledger.ListByOrder(ctx, orderID)
}
