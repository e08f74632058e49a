package etpayment

import (
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/pkg/errorx"
)

// PaymentStatus 支付记录状态
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusSuccess  PaymentStatus = "SUCCESS"
	StatusFailed   PaymentStatus = "FAILED"
	StatusRefunded PaymentStatus = "REFUNDED"
)

// Payment 支付记录（一次网关交易尝试）
type Payment struct {
	ID           string
	OrderID      string
	PGProvider   string
	Amount       decimal.Decimal
	Status       PaymentStatus
	PaymentKey   string // 网关分配，未分配时为空
	Method       string
	CardMetadata *CardMetadata

	RefundedAmount *decimal.Decimal
	RefundReason   string
	FailureReason  string

	ApprovedAt *time.Time
	FailedAt   *time.Time
	RefundedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CardMetadata 卡支付信息（值对象）
type CardMetadata struct {
	Company           string `json:"company,omitempty"`
	Number            string `json:"number,omitempty"` // 掩码卡号
	InstallmentMonths int    `json:"installmentMonths,omitempty"`
	ApproveNo         string `json:"approveNo,omitempty"`
	CardType          string `json:"cardType,omitempty"`
}

// NewPending 创建待支付记录
func NewPending(id, orderID, provider string, amount decimal.Decimal, now time.Time) *Payment {
	return &Payment{
		ID:         id,
		OrderID:    orderID,
		PGProvider: provider,
		Amount:     amount,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Approval 网关批准信息
type Approval struct {
	PaymentKey   string
	Method       string
	CardMetadata *CardMetadata
	ApprovedAt   time.Time
}

// MarkSuccess PENDING -> SUCCESS
func (p *Payment) MarkSuccess(a Approval, now time.Time) error {
	if p.Status != StatusPending {
		return errorx.NewInvalidTransition(p.OrderID, string(p.Status), "approve payment", "payment is not pending")
	}
	approvedAt := a.ApprovedAt
	if approvedAt.IsZero() {
		approvedAt = now
	}
	p.Status = StatusSuccess
	p.PaymentKey = a.PaymentKey
	p.Method = a.Method
	p.CardMetadata = a.CardMetadata
	p.ApprovedAt = &approvedAt
	p.UpdatedAt = now
	return nil
}

// MarkFailed PENDING -> FAILED
func (p *Payment) MarkFailed(reason string, now time.Time) error {
	if p.Status != StatusPending {
		return errorx.NewInvalidTransition(p.OrderID, string(p.Status), "fail payment", "payment is not pending")
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.FailedAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkRefunded SUCCESS -> REFUNDED
func (p *Payment) MarkRefunded(amount decimal.Decimal, reason string, now time.Time) error {
	if p.Status != StatusSuccess {
		return errorx.NewInvalidTransition(p.OrderID, string(p.Status), "refund payment", "only successful payments can be refunded")
	}
	if !amount.IsPositive() || amount.GreaterThan(p.Amount) {
		return errorx.ErrInvalidRefundAmount
	}
	p.Status = StatusRefunded
	p.RefundedAmount = &amount
	p.RefundReason = reason
	p.RefundedAt = &now
	p.UpdatedAt = now
	return nil
}

// IsPartialRefund 退款金额小于支付金额
func (p *Payment) IsPartialRefund() bool {
	return p.RefundedAmount != nil && p.RefundedAmount.LessThan(p.Amount)
}
