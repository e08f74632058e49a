package rpsettlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"oip/checkout/common/entity"
	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/repo/rporder"
)

// 允许分组的列
var groupColumns = map[string]bool{
	"order_type":  true,
	"supplier_id": true,
	"partner_id":  true,
}

// SettlementRepositoryImpl 结算查询实现（MySQL）
type SettlementRepositoryImpl struct {
	db *gorm.DB
}

// NewSettlementRepository 创建结算查询仓储
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &SettlementRepositoryImpl{db: db}
}

func (r *SettlementRepositoryImpl) scope(ctx context.Context, q Query) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("payment_status = ?", string(etorder.PaymentStatusPaid)).
		Where("status <> ?", string(etorder.OrderStatusCancelled)).
		Where("paid_at BETWEEN ? AND ?", q.PeriodStart, q.PeriodEnd)

	if q.OrderType != "" {
		query = query.Where("order_type = ?", string(q.OrderType))
	}
	if q.SupplierID != "" {
		query = query.Where("supplier_id = ?", q.SupplierID)
	}
	if q.PartnerID != "" {
		query = query.Where("partner_id = ?", q.PartnerID)
	}
	return query
}

// FindTargets 查询结算目标订单
func (r *SettlementRepositoryImpl) FindTargets(ctx context.Context, q Query) ([]*etorder.Order, error) {
	var pos []entity.Order
	if err := r.scope(ctx, q).Order("paid_at ASC").Order("id ASC").Find(&pos).Error; err != nil {
		return nil, err
	}

	orders := make([]*etorder.Order, 0, len(pos))
	for i := range pos {
		order, err := rporder.ToDomainModel(&pos[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

type totalsRow struct {
	OrderCount int64
	Revenue    decimal.Decimal
}

// Sum 汇总订单数与营收
func (r *SettlementRepositoryImpl) Sum(ctx context.Context, q Query) (*Totals, error) {
	var row totalsRow
	err := r.scope(ctx, q).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &Totals{OrderCount: row.OrderCount, Revenue: row.Revenue}, nil
}

type groupRow struct {
	GroupKey   string
	OrderCount int64
	Revenue    decimal.Decimal
}

// SumGrouped 按列分组汇总；partner_id 为空的订单归入空字符串分组
func (r *SettlementRepositoryImpl) SumGrouped(ctx context.Context, q Query, column string) ([]*GroupTotals, error) {
	if !groupColumns[column] {
		return nil, fmt.Errorf("unsupported group column %q", column)
	}

	keyExpr := fmt.Sprintf("COALESCE(%s, '')", column)
	var rows []groupRow
	err := r.scope(ctx, q).
		Select(keyExpr + " AS group_key, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Group(keyExpr).
		Order("group_key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]*GroupTotals, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, &GroupTotals{
			Key:    row.GroupKey,
			Totals: Totals{OrderCount: row.OrderCount, Revenue: row.Revenue},
		})
	}
	return groups, nil
}
