package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentResponse 支付记录（DTO）
type PaymentResponse struct {
	ID             string           `json:"id"`
	OrderID        string           `json:"order_id"`
	PGProvider     string           `json:"pg_provider"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         string           `json:"status"`
	PaymentKey     string           `json:"payment_key,omitempty"`
	Method         string           `json:"method,omitempty"`
	Card           *Card            `json:"card,omitempty"`
	RefundedAmount *decimal.Decimal `json:"refunded_amount,omitempty"`
	RefundReason   string           `json:"refund_reason,omitempty"`
	FailureReason  string           `json:"failure_reason,omitempty"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
	FailedAt       *time.Time       `json:"failed_at,omitempty"`
	RefundedAt     *time.Time       `json:"refunded_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Card 卡支付信息（DTO）
type Card struct {
	Company           string `json:"company,omitempty"`
	Number            string `json:"number,omitempty"`
	InstallmentMonths int    `json:"installment_months,omitempty"`
	ApproveNo         string `json:"approve_no,omitempty"`
	CardType          string `json:"card_type,omitempty"`
}

// PaymentResultResponse 支付完成/退款响应
type PaymentResultResponse struct {
	Order     *OrderResponse   `json:"order"`
	Payment   *PaymentResponse `json:"payment"`
	Duplicate bool             `json:"duplicate"`
}

// PaymentWaitResponse 等待支付结果响应
type PaymentWaitResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Event         string `json:"event,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
