package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementSummaryResponse 结算汇总响应
type SettlementSummaryResponse struct {
	PeriodStart  time.Time              `json:"period_start"`
	PeriodEnd    time.Time              `json:"period_end"`
	TotalOrders  int64                  `json:"total_orders"`
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
	GroupBy      string                 `json:"group_by,omitempty"`
	ByGroup      []*SettlementGroupItem `json:"by_group,omitempty"`
}

// SettlementGroupItem 分组汇总
type SettlementGroupItem struct {
	Key          string          `json:"key"`
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// SettlementOrdersResponse 结算目标订单响应
type SettlementOrdersResponse struct {
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Count       int              `json:"count"`
	Orders      []*OrderResponse `json:"orders"`
}
