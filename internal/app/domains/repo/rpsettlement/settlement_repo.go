package rpsettlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/domains/entity/etorder"
)

// Query 结算查询条件
// 命中条件: payment_status = PAID AND status <> CANCELLED AND paid_at BETWEEN PeriodStart AND PeriodEnd
type Query struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	OrderType   etorder.OrderType
	SupplierID  string
	PartnerID   string
}

// Totals 聚合结果
type Totals struct {
	OrderCount int64
	Revenue    decimal.Decimal
}

// GroupTotals 分组聚合结果
type GroupTotals struct {
	Key string
	Totals
}

// SettlementRepository 结算只读查询，不加锁
type SettlementRepository interface {
	// FindTargets 查询结算目标订单，按 paid_at 升序
	FindTargets(ctx context.Context, q Query) ([]*etorder.Order, error)

	// Sum 汇总订单数与营收
	Sum(ctx context.Context, q Query) (*Totals, error)

	// SumGrouped 按列分组汇总，column 必须来自调用方白名单
	SumGrouped(ctx context.Context, q Query, column string) ([]*GroupTotals, error)
}
