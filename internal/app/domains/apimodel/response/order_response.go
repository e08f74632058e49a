package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderResponse 订单响应（DTO）
type OrderResponse struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	OrderType       string          `json:"order_type"`
	BuyerID         string          `json:"buyer_id"`
	SellerID        string          `json:"seller_id"`
	SupplierID      string          `json:"supplier_id"`
	PartnerID       string          `json:"partner_id,omitempty"`
	Items           []*OrderItem    `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	Memo            string          `json:"memo,omitempty"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	RefundedAt      *time.Time      `json:"refunded_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
}

// OrderItem 订单行（DTO）
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Address 收货地址（DTO）
type Address struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	ZipCode       string `json:"zip_code"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2,omitempty"`
}

// Warning 非致命提示
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateOrderResponse 创建订单响应
type CreateOrderResponse struct {
	Order   *OrderResponse `json:"order"`
	Warning *Warning       `json:"warning,omitempty"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	Items []*OrderResponse `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// OrderLogResponse 审计日志（DTO）
type OrderLogResponse struct {
	ID             int64                  `json:"id"`
	Action         string                 `json:"action"`
	PreviousStatus string                 `json:"previous_status,omitempty"`
	NewStatus      string                 `json:"new_status"`
	PerformedBy    string                 `json:"performed_by"`
	PerformerType  string                 `json:"performer_type"`
	Message        string                 `json:"message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}
