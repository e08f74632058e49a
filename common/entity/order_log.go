package entity

import (
	"time"

	"gorm.io/datatypes"
)

// OrderLog 订单审计日志，只追加，不更新不删除
type OrderLog struct {
	ID             int64          `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID        string         `gorm:"column:order_id;type:varchar(64);not null;index:idx_order_created"`
	Action         string         `gorm:"column:action;type:varchar(32);not null"`
	PreviousStatus *string        `gorm:"column:previous_status;type:varchar(16)"`
	NewStatus      *string        `gorm:"column:new_status;type:varchar(16)"`
	PerformedBy    string         `gorm:"column:performed_by;type:varchar(64);not null"`
	PerformerType  string         `gorm:"column:performer_type;type:varchar(16);not null"`
	Message        string         `gorm:"column:message;type:varchar(500)"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:json;not null"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index:idx_order_created"`
}

// TableName 指定表名
func (OrderLog) TableName() string {
	return "order_logs"
}
