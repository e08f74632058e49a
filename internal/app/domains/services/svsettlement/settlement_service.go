package svsettlement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/repo/rpsettlement"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/logger"
)

// GroupBy 结算分组维度
type GroupBy string

const (
	GroupByNone       GroupBy = ""
	GroupByOrderType  GroupBy = "orderType"
	GroupBySupplierID GroupBy = "supplierId"
	GroupByPartnerID  GroupBy = "partnerId"
)

var groupColumns = map[GroupBy]string{
	GroupByOrderType:  "order_type",
	GroupBySupplierID: "supplier_id",
	GroupByPartnerID:  "partner_id",
}

// Filter 可选过滤条件
type Filter struct {
	OrderType  etorder.OrderType
	SupplierID string
	PartnerID  string
}

// SummaryParams 汇总参数
type SummaryParams struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Filter      Filter
	GroupBy     GroupBy
}

// GroupTotal 分组汇总
type GroupTotal struct {
	Key          string
	TotalOrders  int64
	TotalRevenue decimal.Decimal
}

// Summary 结算汇总
type Summary struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TotalOrders  int64
	TotalRevenue decimal.Decimal
	GroupBy      GroupBy
	ByGroup      []*GroupTotal
}

// SettlementService 结算汇总服务（只读）
// 读取当前状态，不加锁；期间结束后的退款会改变重新计算的结果
type SettlementService struct {
	repo   rpsettlement.SettlementRepository
	logger logger.Logger
}

// NewSettlementService 创建结算服务
func NewSettlementService(repo rpsettlement.SettlementRepository, logger logger.Logger) *SettlementService {
	return &SettlementService{repo: repo, logger: logger}
}

// FindSettlementTargetOrders 查询结算目标订单，按支付时间升序
func (s *SettlementService) FindSettlementTargetOrders(ctx context.Context, periodStart, periodEnd time.Time, filter *Filter) ([]*etorder.Order, error) {
	q, err := buildQuery(periodStart, periodEnd, filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.FindTargets(ctx, q)
	if err != nil {
		return nil, errorx.Persistence("find settlement targets", err)
	}
	return orders, nil
}

// GetSettlementSummary 汇总订单数与营收；指定 GroupBy 时附带分组结果，分组之和等于总计
func (s *SettlementService) GetSettlementSummary(ctx context.Context, params *SummaryParams) (*Summary, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params are required", errorx.ErrInvalidPeriod)
	}

	var column string
	if params.GroupBy != GroupByNone {
		c, ok := groupColumns[params.GroupBy]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errorx.ErrInvalidGroupBy, params.GroupBy)
		}
		column = c
	}

	q, err := buildQuery(params.PeriodStart, params.PeriodEnd, &params.Filter)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Sum(ctx, q)
	if err != nil {
		return nil, errorx.Persistence("sum settlement", err)
	}

	summary := &Summary{
		PeriodStart:  q.PeriodStart,
		PeriodEnd:    q.PeriodEnd,
		TotalOrders:  totals.OrderCount,
		TotalRevenue: totals.Revenue,
		GroupBy:      params.GroupBy,
	}

	if column != "" {
		groups, err := s.repo.SumGrouped(ctx, q, column)
		if err != nil {
			return nil, errorx.Persistence("sum settlement by group", err)
		}
		summary.ByGroup = make([]*GroupTotal, 0, len(groups))
		for _, g := range groups {
			summary.ByGroup = append(summary.ByGroup, &GroupTotal{
				Key:          g.Key,
				TotalOrders:  g.OrderCount,
				TotalRevenue: g.Revenue,
			})
		}
	}

	s.logger.InfoContext(ctx, "settlement summary computed",
		"period_start", q.PeriodStart,
		"period_end", q.PeriodEnd,
		"group_by", string(params.GroupBy),
		"total_orders", summary.TotalOrders,
		"total_revenue", summary.TotalRevenue.String(),
	)
	return summary, nil
}

func buildQuery(start, end time.Time, filter *Filter) (rpsettlement.Query, error) {
	if start.IsZero() || end.IsZero() {
		return rpsettlement.Query{}, fmt.Errorf("%w: period start and end are required", errorx.ErrInvalidPeriod)
	}
	if end.Before(start) {
		return rpsettlement.Query{}, fmt.Errorf("%w: end %s is before start %s",
			errorx.ErrInvalidPeriod, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	q := rpsettlement.Query{PeriodStart: start.UTC(), PeriodEnd: end.UTC()}
	if filter != nil {
		q.OrderType = filter.OrderType.Normalize()
		q.SupplierID = filter.SupplierID
		q.PartnerID = filter.PartnerID
	}
	return q, nil
}
