package svorder

import (
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/modules/mdguard"
)

// CreateOrderInput 创建订单参数
// 行小计、商品小计与订单总额由服务端重新计算
type CreateOrderInput struct {
	OrderType       string
	BuyerID         string
	SellerID        string
	SupplierID      string
	PartnerID       string
	Items           []*etorder.OrderItem
	ShippingFee     decimal.Decimal
	Discount        decimal.Decimal
	ShippingAddress *etorder.Address
	Memo            string

	// Caller 调用方服务名，护栏拒绝时用于排查
	Caller    string
	Performer etorderlog.Performer
}

// CreateOrderResult 创建结果；Warning 非空表示订单类型使用了默认值
type CreateOrderResult struct {
	Order   *etorder.Order
	Warning *mdguard.Warning
}

// InitiatePaymentInput 发起支付参数
type InitiatePaymentInput struct {
	PGProvider string
	Performer  etorderlog.Performer
}

// CompletePaymentInput 网关支付成功回调
type CompletePaymentInput struct {
	PaymentKey   string
	PGProvider   string
	Method       string
	Amount       *decimal.Decimal // 可选，填写时必须等于订单总额
	CardMetadata *etpayment.CardMetadata
	ApprovedAt   time.Time
	Performer    etorderlog.Performer
}

// FailPaymentInput 网关支付失败回调
// 没有 PENDING 记录时按 PGProvider 补建一条再标记失败
type FailPaymentInput struct {
	PGProvider string
	Reason     string
	Performer  etorderlog.Performer
}

// RefundInput 退款参数，Amount 为空表示全额退款
type RefundInput struct {
	Amount    *decimal.Decimal
	Reason    string
	Performer etorderlog.Performer
}

// CancelInput 取消订单参数
type CancelInput struct {
	Reason    string
	Performer etorderlog.Performer
}

// PaymentResult 支付/退款结果
type PaymentResult struct {
	Order   *etorder.Order
	Payment *etpayment.Payment

	// Duplicate 为 true 表示同一支付键的重复回调，未产生任何变更
	Duplicate bool
}
