package etorder

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oip/checkout/internal/app/pkg/errorx"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newParams() NewOrderParams {
	return NewOrderParams{
		ID:          "order-1",
		OrderNumber: "ORD-20240315-0001",
		OrderType:   OrderTypeGeneric,
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		SupplierID:  "supplier-1",
		Items: []*OrderItem{
			{ProductID: "p-1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99"), Subtotal: decimal.NewFromInt(1)},
			{ProductID: "p-2", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
		},
		ShippingFee: decimal.NewFromInt(3),
		Discount:    decimal.RequireFromString("0.98"),
		Now:         now,
	}
}

func TestNewOrder_RecomputesAmounts(t *testing.T) {
	order, err := NewOrder(newParams())
	require.NoError(t, err)

	assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("39.98")))
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("44.98")))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(47)))
	assert.Equal(t, OrderStatusCreated, order.Status)
	assert.Equal(t, PaymentStatusPending, order.PaymentStatus)
	assert.True(t, order.CanPay())
}

func TestNewOrder_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *NewOrderParams)
		want   error
	}{
		{"missing buyer", func(p *NewOrderParams) { p.BuyerID = "" }, ErrInvalidBuyer},
		{"missing supplier", func(p *NewOrderParams) { p.SupplierID = "" }, ErrInvalidSupplier},
		{"no items", func(p *NewOrderParams) { p.Items = nil }, ErrEmptyItems},
		{"zero quantity", func(p *NewOrderParams) { p.Items[1].Quantity = 0 }, ErrInvalidQuantity},
		{"negative price", func(p *NewOrderParams) { p.Items[0].UnitPrice = decimal.NewFromInt(-1) }, ErrInvalidUnitPrice},
		{"negative shipping", func(p *NewOrderParams) { p.ShippingFee = decimal.NewFromInt(-1) }, ErrInvalidShippingFee},
		{"discount exceeds", func(p *NewOrderParams) { p.Discount = decimal.NewFromInt(100) }, ErrNegativeTotal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newParams()
			tc.mutate(&p)
			_, err := NewOrder(p)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestOrder_Transitions(t *testing.T) {
	order, err := NewOrder(newParams())
	require.NoError(t, err)

	err = order.MarkRefunded(now)
	assert.True(t, errors.Is(err, errorx.ErrInvalidStateTransition))

	paidAt := now.Add(time.Minute)
	require.NoError(t, order.MarkPaid(paidAt))
	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)
	assert.True(t, order.PaidAt.Equal(paidAt))
	assert.False(t, order.CanPay())

	assert.True(t, errors.Is(order.MarkPaid(now), errorx.ErrInvalidStateTransition))
	assert.True(t, errors.Is(order.Cancel(now), errorx.ErrInvalidStateTransition))

	require.NoError(t, order.MarkRefunded(paidAt.Add(time.Hour)))
	assert.Equal(t, OrderStatusRefunded, order.Status)
	assert.Equal(t, PaymentStatusRefunded, order.PaymentStatus)
	assert.NotNil(t, order.RefundedAt)
}

func TestOrder_Cancel(t *testing.T) {
	order, err := NewOrder(newParams())
	require.NoError(t, err)

	require.NoError(t, order.Cancel(now))
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.Equal(t, PaymentStatusPending, order.PaymentStatus)
	assert.True(t, errors.Is(order.MarkPaid(now), errorx.ErrInvalidStateTransition))
	assert.True(t, errors.Is(order.EnsurePayable("fail payment"), errorx.ErrInvalidStateTransition))
}

func TestOrderType_Normalize(t *testing.T) {
	assert.Equal(t, OrderTypeTourism, OrderType("  tourism ").Normalize())
}
