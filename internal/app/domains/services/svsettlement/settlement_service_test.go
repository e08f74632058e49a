package svsettlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/domains/repo/rpsettlement"
	"oip/checkout/internal/app/infra/persistence/dbtest"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/logger"
)

var (
	marchStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	marchEnd   = time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
)

type seed struct {
	orderType  etorder.OrderType
	supplierID string
	partnerID  string
	amount     int64
	paidAt     *time.Time
	refunded   bool
	cancelled  bool
}

type fixture struct {
	svc    *SettlementService
	orders rporder.OrderRepository
	seq    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	return &fixture{
		svc:    NewSettlementService(rpsettlement.NewSettlementRepository(db), logger.NewNopLogger()),
		orders: rporder.NewOrderRepository(db),
	}
}

func (f *fixture) add(t *testing.T, s seed) *etorder.Order {
	t.Helper()
	f.seq++

	createdAt := marchStart.Add(-24 * time.Hour)
	order, err := etorder.NewOrder(etorder.NewOrderParams{
		ID:          fmt.Sprintf("order-%03d", f.seq),
		OrderNumber: fmt.Sprintf("ORD-20240229-%04d", f.seq),
		OrderType:   s.orderType,
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		SupplierID:  s.supplierID,
		PartnerID:   s.partnerID,
		Items: []*etorder.OrderItem{{
			ProductID: "p-1",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(s.amount),
		}},
		Now: createdAt,
	})
	require.NoError(t, err)

	switch {
	case s.cancelled:
		require.NoError(t, order.Cancel(createdAt))
	case s.paidAt != nil:
		require.NoError(t, order.MarkPaid(*s.paidAt))
		if s.refunded {
			require.NoError(t, order.MarkRefunded(s.paidAt.Add(time.Hour)))
		}
	}

	require.NoError(t, f.orders.Create(context.Background(), order))
	return order
}

func at(day, hour int) *time.Time {
	ts := time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
	return &ts
}

func (f *fixture) seedMonth(t *testing.T) {
	t.Helper()
	f.add(t, seed{orderType: "GENERIC", supplierID: "sup-a", amount: 1000, paidAt: at(5, 10)})
	f.add(t, seed{orderType: "TOURISM", supplierID: "sup-b", partnerID: "partner-1", amount: 2000, paidAt: at(2, 9)})
	f.add(t, seed{orderType: "GENERIC", supplierID: "sup-b", amount: 3000, paidAt: at(20, 18)})

	// 不计入结算
	f.add(t, seed{orderType: "GENERIC", supplierID: "sup-a", amount: 4000})
	f.add(t, seed{orderType: "GENERIC", supplierID: "sup-a", amount: 5000, cancelled: true})
	f.add(t, seed{orderType: "GENERIC", supplierID: "sup-a", amount: 6000, paidAt: at(10, 12), refunded: true})
	april := time.Date(2024, 4, 1, 0, 0, 1, 0, time.UTC)
	f.add(t, seed{orderType: "GENERIC", supplierID: "sup-a", amount: 7000, paidAt: &april})
}

func TestGetSettlementSummary_MonthTotals(t *testing.T) {
	f := newFixture(t)
	f.seedMonth(t)

	summary, err := f.svc.GetSettlementSummary(context.Background(), &SummaryParams{
		PeriodStart: marchStart,
		PeriodEnd:   marchEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(6000)), summary.TotalRevenue.String())
	assert.Nil(t, summary.ByGroup)
}

func TestFindSettlementTargetOrders_OrderedByPaidAt(t *testing.T) {
	f := newFixture(t)
	f.seedMonth(t)

	orders, err := f.svc.FindSettlementTargetOrders(context.Background(), marchStart, marchEnd, nil)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, orders[1].TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, orders[2].TotalAmount.Equal(decimal.NewFromInt(3000)))
	for _, o := range orders {
		assert.Equal(t, etorder.PaymentStatusPaid, o.PaymentStatus)
		assert.NotEqual(t, etorder.OrderStatusCancelled, o.Status)
	}
}

func TestSummaryMatchesTargetOrders(t *testing.T) {
	f := newFixture(t)
	f.seedMonth(t)
	ctx := context.Background()

	filters := []Filter{
		{},
		{OrderType: "generic"},
		{SupplierID: "sup-b"},
		{PartnerID: "partner-1"},
		{OrderType: "GENERIC", SupplierID: "sup-b"},
	}
	for _, filter := range filters {
		filter := filter
		orders, err := f.svc.FindSettlementTargetOrders(ctx, marchStart, marchEnd, &filter)
		require.NoError(t, err)

		expected := decimal.Zero
		for _, o := range orders {
			expected = expected.Add(o.TotalAmount)
		}

		summary, err := f.svc.GetSettlementSummary(ctx, &SummaryParams{
			PeriodStart: marchStart,
			PeriodEnd:   marchEnd,
			Filter:      filter,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(len(orders)), summary.TotalOrders, "filter %+v", filter)
		assert.True(t, expected.Equal(summary.TotalRevenue), "filter %+v: %s != %s", filter, expected, summary.TotalRevenue)
	}
}

func TestGetSettlementSummary_GroupsSumToTotals(t *testing.T) {
	f := newFixture(t)
	f.seedMonth(t)
	ctx := context.Background()

	for _, groupBy := range []GroupBy{GroupByOrderType, GroupBySupplierID, GroupByPartnerID} {
		summary, err := f.svc.GetSettlementSummary(ctx, &SummaryParams{
			PeriodStart: marchStart,
			PeriodEnd:   marchEnd,
			GroupBy:     groupBy,
		})
		require.NoError(t, err)
		require.NotEmpty(t, summary.ByGroup)

		var count int64
		revenue := decimal.Zero
		for _, g := range summary.ByGroup {
			count += g.TotalOrders
			revenue = revenue.Add(g.TotalRevenue)
		}
		assert.Equal(t, summary.TotalOrders, count, "group by %s", groupBy)
		assert.True(t, summary.TotalRevenue.Equal(revenue), "group by %s", groupBy)
	}
}

func TestGetSettlementSummary_GroupByOrderType(t *testing.T) {
	f := newFixture(t)
	f.seedMonth(t)

	summary, err := f.svc.GetSettlementSummary(context.Background(), &SummaryParams{
		PeriodStart: marchStart,
		PeriodEnd:   marchEnd,
		GroupBy:     GroupByOrderType,
	})
	require.NoError(t, err)
	require.Len(t, summary.ByGroup, 2)
	assert.Equal(t, "GENERIC", summary.ByGroup[0].Key)
	assert.Equal(t, int64(2), summary.ByGroup[0].TotalOrders)
	assert.True(t, summary.ByGroup[0].TotalRevenue.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, "TOURISM", summary.ByGroup[1].Key)
	assert.True(t, summary.ByGroup[1].TotalRevenue.Equal(decimal.NewFromInt(2000)))
}

func TestGetSettlementSummary_EmptyPeriod(t *testing.T) {
	f := newFixture(t)
	f.seedMonth(t)

	summary, err := f.svc.GetSettlementSummary(context.Background(), &SummaryParams{
		PeriodStart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
		GroupBy:     GroupBySupplierID,
	})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.IsZero())
	assert.Empty(t, summary.ByGroup)
}

func TestGetSettlementSummary_InvalidParams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetSettlementSummary(ctx, &SummaryParams{
		PeriodStart: marchStart,
		PeriodEnd:   marchEnd,
		GroupBy:     "buyerId",
	})
	assert.True(t, errors.Is(err, errorx.ErrInvalidGroupBy))

	_, err = f.svc.GetSettlementSummary(ctx, &SummaryParams{PeriodStart: marchEnd, PeriodEnd: marchStart})
	assert.True(t, errors.Is(err, errorx.ErrInvalidPeriod))

	_, err = f.svc.FindSettlementTargetOrders(ctx, time.Time{}, marchEnd, nil)
	assert.True(t, errors.Is(err, errorx.ErrInvalidPeriod))
}
