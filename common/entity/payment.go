package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment 支付记录（每次支付尝试一行）
type Payment struct {
	ID         string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderID    string          `gorm:"column:order_id;type:varchar(64);not null;index:idx_order_status"`
	PGProvider string          `gorm:"column:pg_provider;type:varchar(32);not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null"`
	Status     string          `gorm:"column:status;type:varchar(16);not null;default:'PENDING';index:idx_order_status"`

	// 网关分配，设置后全局唯一（NULL 不参与唯一约束）
	PaymentKey   *string        `gorm:"column:payment_key;type:varchar(128);uniqueIndex:uk_payment_key"`
	Method       string         `gorm:"column:method;type:varchar(32)"`
	CardMetadata datatypes.JSON `gorm:"column:card_metadata;type:json;not null"`

	RefundedAmount decimal.NullDecimal `gorm:"column:refunded_amount;type:decimal(20,2)"`
	RefundReason   string              `gorm:"column:refund_reason;type:varchar(500)"`
	FailureReason  string              `gorm:"column:failure_reason;type:varchar(500)"`

	ApprovedAt *time.Time `gorm:"column:approved_at"`
	FailedAt   *time.Time `gorm:"column:failed_at"`
	RefundedAt *time.Time `gorm:"column:refunded_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
