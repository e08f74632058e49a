package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCallback 支付网关回调消息（标准化）
// 用于 网关适配层 → checkout callback consumer 的消息传递
type PaymentCallback struct {
	EventID    string           `json:"event_id"`              // 网关事件 ID（链路追踪）
	Type       string           `json:"type"`                  // 回调类型: PAYMENT_APPROVED / PAYMENT_FAILED
	OrderID    string           `json:"order_id"`              // 订单 ID
	PGProvider string           `json:"pg_provider,omitempty"` // 网关名称
	PaymentKey string           `json:"payment_key,omitempty"` // 网关交易号（成功时必填）
	Method     string           `json:"method,omitempty"`      // 支付方式
	Amount     *decimal.Decimal `json:"amount,omitempty"`      // 网关确认金额
	Card       *CardInfo        `json:"card,omitempty"`        // 卡支付信息
	ApprovedAt int64            `json:"approved_at,omitempty"` // 批准时间戳（Unix timestamp）
	Reason     string           `json:"reason,omitempty"`      // 失败原因（失败时返回）
}

// CardInfo 卡支付信息
type CardInfo struct {
	Company           string `json:"company,omitempty"`
	Number            string `json:"number,omitempty"`
	InstallmentMonths int    `json:"installment_months,omitempty"`
	ApproveNo         string `json:"approve_no,omitempty"`
	CardType          string `json:"card_type,omitempty"`
}

// 回调类型常量
const (
	CallbackTypeApproved = "PAYMENT_APPROVED" // 支付成功
	CallbackTypeFailed   = "PAYMENT_FAILED"   // 支付失败
)

// Validate 校验必填字段
func (c *PaymentCallback) Validate() error {
	if c.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	switch c.Type {
	case CallbackTypeApproved:
		if c.PaymentKey == "" {
			return fmt.Errorf("payment_key is required for %s", c.Type)
		}
	case CallbackTypeFailed:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown callback type %q", c.Type)
	}
	return nil
}

// ApprovedTime 批准时间，未提供时返回零值
func (c *PaymentCallback) ApprovedTime() time.Time {
	if c.ApprovedAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ApprovedAt, 0).UTC()
}
