package mdledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/repo/rppayment"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/idgen"
)

// DefaultProvider 未指定网关时使用
const DefaultProvider = "DEFAULT"

// LedgerModule 支付台账模块，仅供订单服务使用
// 所有状态变更都是基于当前支付状态的条件更新
type LedgerModule struct {
	paymentRepo rppayment.PaymentRepository
}

// NewLedgerModule 创建支付台账模块
func NewLedgerModule(paymentRepo rppayment.PaymentRepository) *LedgerModule {
	return &LedgerModule{paymentRepo: paymentRepo}
}

// CreatePending 创建待支付记录
func (m *LedgerModule) CreatePending(ctx context.Context, orderID, provider string, amount decimal.Decimal, now time.Time) (*etpayment.Payment, error) {
	if provider == "" {
		provider = DefaultProvider
	}
	payment := etpayment.NewPending(idgen.NewID(), orderID, provider, amount, now)
	if err := m.paymentRepo.Create(ctx, payment); err != nil {
		return nil, errorx.Persistence("create payment", err)
	}
	return payment, nil
}

// EnsurePending 返回订单最新的待支付记录，不存在时自动创建
// created 表示本次是否新建
func (m *LedgerModule) EnsurePending(ctx context.Context, orderID, provider string, amount decimal.Decimal, now time.Time) (payment *etpayment.Payment, created bool, err error) {
	payment, err = m.FindLatestPending(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if payment != nil {
		return payment, false, nil
	}
	payment, err = m.CreatePending(ctx, orderID, provider, amount, now)
	if err != nil {
		return nil, false, err
	}
	return payment, true, nil
}

// SupersededReason 新的支付尝试替换未完成的旧尝试
const SupersededReason = "superseded by a new payment attempt"

// SupersedePending 把订单下所有 PENDING 记录标记为 FAILED，返回被替换的记录
// 调用方须持有订单行锁
func (m *LedgerModule) SupersedePending(ctx context.Context, orderID string, now time.Time) ([]*etpayment.Payment, error) {
	var superseded []*etpayment.Payment
	for {
		payment, err := m.FindLatestPending(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if payment == nil {
			return superseded, nil
		}
		if err := m.MarkFailed(ctx, payment, SupersededReason, now); err != nil {
			return nil, err
		}
		superseded = append(superseded, payment)
	}
}

// FindByPaymentKey 根据网关支付键查询，不存在返回 nil
func (m *LedgerModule) FindByPaymentKey(ctx context.Context, paymentKey string) (*etpayment.Payment, error) {
	payment, err := m.paymentRepo.GetByPaymentKey(ctx, paymentKey)
	if err != nil {
		return nil, errorx.Persistence("get payment by key", err)
	}
	return payment, nil
}

// FindLatestPending 查询最新的待支付记录，不存在返回 nil
func (m *LedgerModule) FindLatestPending(ctx context.Context, orderID string) (*etpayment.Payment, error) {
	payment, err := m.paymentRepo.FindLatestByStatus(ctx, orderID, etpayment.StatusPending)
	if err != nil {
		return nil, errorx.Persistence("find pending payment", err)
	}
	return payment, nil
}

// FindSuccess 查询订单的成功支付记录，不存在返回 PaymentNotFoundError
func (m *LedgerModule) FindSuccess(ctx context.Context, orderID string) (*etpayment.Payment, error) {
	payment, err := m.paymentRepo.FindLatestByStatus(ctx, orderID, etpayment.StatusSuccess)
	if err != nil {
		return nil, errorx.Persistence("find success payment", err)
	}
	if payment == nil {
		return nil, &errorx.PaymentNotFoundError{OrderID: orderID, Status: string(etpayment.StatusSuccess)}
	}
	return payment, nil
}

// MarkSuccess PENDING -> SUCCESS
func (m *LedgerModule) MarkSuccess(ctx context.Context, payment *etpayment.Payment, approval etpayment.Approval, now time.Time) error {
	if err := payment.MarkSuccess(approval, now); err != nil {
		return err
	}
	return m.update(ctx, payment, etpayment.StatusPending, "mark payment success")
}

// MarkFailed PENDING -> FAILED
func (m *LedgerModule) MarkFailed(ctx context.Context, payment *etpayment.Payment, reason string, now time.Time) error {
	if err := payment.MarkFailed(reason, now); err != nil {
		return err
	}
	return m.update(ctx, payment, etpayment.StatusPending, "mark payment failed")
}

// MarkRefunded SUCCESS -> REFUNDED
func (m *LedgerModule) MarkRefunded(ctx context.Context, payment *etpayment.Payment, amount decimal.Decimal, reason string, now time.Time) error {
	if err := payment.MarkRefunded(amount, reason, now); err != nil {
		return err
	}
	return m.update(ctx, payment, etpayment.StatusSuccess, "mark payment refunded")
}

// ListByOrder 查询订单下全部支付记录
func (m *LedgerModule) ListByOrder(ctx context.Context, orderID string) ([]*etpayment.Payment, error) {
	payments, err := m.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, errorx.Persistence("list payments", err)
	}
	return payments, nil
}

func (m *LedgerModule) update(ctx context.Context, payment *etpayment.Payment, expected etpayment.PaymentStatus, op string) error {
	if err := m.paymentRepo.UpdateState(ctx, payment, expected); err != nil {
		return errorx.Persistence(op, err)
	}
	return nil
}
