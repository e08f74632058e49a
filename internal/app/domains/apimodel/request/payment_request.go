package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest 发起支付请求
type InitiatePaymentRequest struct {
	PGProvider string `json:"pg_provider" example:"TOSS"`
	Actor
}

// CompletePaymentRequest 支付成功请求（网关同步回调）
type CompletePaymentRequest struct {
	PaymentKey string           `json:"payment_key" binding:"required" example:"pk_20240315_0001"`
	PGProvider string           `json:"pg_provider" example:"TOSS"`
	Method     string           `json:"method" example:"card"`
	Amount     *decimal.Decimal `json:"amount" swaggertype:"string" example:"42800"`
	Card       *Card            `json:"card"`
	ApprovedAt *time.Time       `json:"approved_at" example:"2024-03-15T10:00:00Z"`
	Actor
}

// Card 卡支付信息
type Card struct {
	Company           string `json:"company" example:"KB"`
	Number            string `json:"number" example:"1234-****-****-5678"`
	InstallmentMonths int    `json:"installment_months" binding:"min=0" example:"0"`
	ApproveNo         string `json:"approve_no" example:"00012345"`
	CardType          string `json:"card_type" example:"CREDIT"`
}

// FailPaymentRequest 支付失败请求
type FailPaymentRequest struct {
	PGProvider string `json:"pg_provider" example:"TOSS"`
	Reason     string `json:"reason" binding:"max=500" example:"insufficient funds"`
	Actor
}

// RefundRequest 退款请求，amount 为空表示全额退款
type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount" swaggertype:"string" example:"10000"`
	Reason string           `json:"reason" binding:"max=500" example:"customer request"`
	Actor
}

// CancelRequest 取消订单请求
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"changed mind"`
	Actor
}
