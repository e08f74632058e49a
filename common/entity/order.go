package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order 订单实体
type Order struct {
	// 基础字段
	ID          string `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderNumber string `gorm:"column:order_number;type:varchar(32);not null;uniqueIndex:uk_order_number"`
	OrderType   string `gorm:"column:order_type;type:varchar(32);not null;index:idx_settlement,priority:3"`

	// 参与方
	BuyerID    string  `gorm:"column:buyer_id;type:varchar(64);not null;index:idx_buyer_created"`
	SellerID   string  `gorm:"column:seller_id;type:varchar(64);not null"`
	SupplierID string  `gorm:"column:supplier_id;type:varchar(64);not null"`
	PartnerID  *string `gorm:"column:partner_id;type:varchar(64)"`

	// 商品与金额
	Items       datatypes.JSON  `gorm:"column:items;type:json;not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:decimal(20,2);not null"`
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:decimal(20,2);not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:decimal(20,2);not null"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(20,2);not null"`

	// 收货信息（可选）
	ShippingAddress datatypes.JSON `gorm:"column:shipping_address;type:json;not null"`
	Memo            string         `gorm:"column:memo;type:varchar(500)"`

	// 状态
	Status        string `gorm:"column:status;type:varchar(16);not null;default:'CREATED'"`
	PaymentStatus string `gorm:"column:payment_status;type:varchar(16);not null;default:'PENDING';index:idx_settlement,priority:1"`

	// 时间戳
	CreatedAt   time.Time  `gorm:"column:created_at;not null;index:idx_buyer_created"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
	PaidAt      *time.Time `gorm:"column:paid_at;index:idx_settlement,priority:2"`
	RefundedAt  *time.Time `gorm:"column:refunded_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
