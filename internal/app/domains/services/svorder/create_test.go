package svorder

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oip/checkout/common/entity"
	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/pkg/errorx"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{4}$`)

func TestCreateOrder_ComputesTotalsAndWritesLog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.svc.CreateOrder(ctx, newCreateInput("GENERIC", 1000, 2))
	require.NoError(t, err)
	assert.Nil(t, result.Warning)

	order := result.Order
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, "20240315", order.OrderNumber[4:12])
	assert.Equal(t, etorder.OrderStatusCreated, order.Status)
	assert.Equal(t, etorder.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2000)))

	stored, err := h.svc.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(2000)))
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].Subtotal.Equal(decimal.NewFromInt(2000)))

	logs, err := h.svc.GetOrderLogs(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, etorderlog.ActionCreated, logs[0].Action)
	assert.Equal(t, "", logs[0].PreviousStatus)
	assert.Equal(t, string(etorder.OrderStatusCreated), logs[0].NewStatus)
	assert.Equal(t, "buyer-1", logs[0].PerformedBy)
	assert.Equal(t, etorderlog.PerformerBuyer, logs[0].PerformerType)

	assert.Equal(t, []events.Type{events.TypeOrderCreated}, h.publisher.types())
}

func TestCreateOrder_IgnoresCallerSubtotals(t *testing.T) {
	h := newHarness(t)

	in := newCreateInput("COSMETICS", 1500, 3)
	in.Items[0].Subtotal = decimal.NewFromInt(1)
	in.ShippingFee = decimal.NewFromInt(300)
	in.Discount = decimal.NewFromInt(500)

	result, err := h.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, etorder.OrderTypeCosmetics, order.OrderType)
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.NewFromInt(4500)))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(4500)))
	assert.True(t, order.TotalAmount.Equal(order.Subtotal.Add(order.ShippingFee).Sub(order.Discount)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(4300)))
}

func TestCreateOrder_BlockedTypePersistsNothing(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateOrder(context.Background(), newCreateInput("BLOCKED_X", 1000, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrInvalidOrderType))

	var typeErr *errorx.InvalidOrderTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "checkout-test", typeErr.Service)
	assert.True(t, typeErr.At.Equal(testNow))

	assert.Zero(t, h.count(t, &entity.Order{}, ""))
	assert.Zero(t, h.count(t, &entity.OrderLog{}, ""))
	assert.Empty(t, h.publisher.types())
}

func TestCreateOrder_BlockedTypeReportsCaller(t *testing.T) {
	h := newHarness(t)

	in := newCreateInput("blocked_x", 1000, 1)
	in.Caller = "storefront"
	_, err := h.svc.CreateOrder(context.Background(), in)

	var typeErr *errorx.InvalidOrderTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "BLOCKED_X", typeErr.OrderType)
	assert.Equal(t, "storefront", typeErr.Service)
}

func TestCreateOrder_OmittedTypeDefaultsToGenericWithWarning(t *testing.T) {
	h := newHarness(t)

	result, err := h.svc.CreateOrder(context.Background(), newCreateInput("", 1000, 1))
	require.NoError(t, err)
	assert.Equal(t, etorder.OrderTypeGeneric, result.Order.OrderType)
	require.NotNil(t, result.Warning)
	assert.Equal(t, mdguard.WarningDefaultOrderType, result.Warning.Code)
}

func TestCreateOrder_InvalidInputPersistsNothing(t *testing.T) {
	h := newHarness(t)

	in := newCreateInput("GENERIC", 1000, 1)
	in.Items = nil
	_, err := h.svc.CreateOrder(context.Background(), in)
	assert.True(t, errors.Is(err, errorx.ErrInvalidOrderInput))

	in = newCreateInput("GENERIC", 1000, 1)
	in.Discount = decimal.NewFromInt(5000)
	_, err = h.svc.CreateOrder(context.Background(), in)
	assert.True(t, errors.Is(err, errorx.ErrInvalidOrderInput))

	assert.Zero(t, h.count(t, &entity.Order{}, ""))
}

func TestCreateOrder_RetriesOnOrderNumberCollision(t *testing.T) {
	numbers := &sequenceNumbers{numbers: []string{
		"ORD-20240315-0001",
		"ORD-20240315-0001",
		"ORD-20240315-0001",
		"ORD-20240315-0002",
	}}
	h := newHarness(t, WithNumberGenerator(numbers))
	ctx := context.Background()

	first, err := h.svc.CreateOrder(ctx, newCreateInput("GENERIC", 100, 1))
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240315-0001", first.Order.OrderNumber)

	second, err := h.svc.CreateOrder(ctx, newCreateInput("GENERIC", 100, 1))
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240315-0002", second.Order.OrderNumber)

	assert.Equal(t, int64(2), h.count(t, &entity.Order{}, ""))
	assert.Equal(t, int64(2), h.count(t, &entity.OrderLog{}, ""))
}

func TestCreateOrder_FailsAfterRetryLimit(t *testing.T) {
	numbers := &sequenceNumbers{numbers: []string{"ORD-20240315-0007"}}
	h := newHarness(t, WithNumberGenerator(numbers), WithNumberRetryLimit(3))
	ctx := context.Background()

	_, err := h.svc.CreateOrder(ctx, newCreateInput("GENERIC", 100, 1))
	require.NoError(t, err)

	_, err = h.svc.CreateOrder(ctx, newCreateInput("GENERIC", 100, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrOrderNumberExhausted))

	assert.Equal(t, int64(1), h.count(t, &entity.Order{}, ""))
	assert.Equal(t, int64(1), h.count(t, &entity.OrderLog{}, ""))
}

func TestCreateOrder_UniqueOrderNumbers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := h.svc.CreateOrder(ctx, newCreateInput("TOURISM", 100, 1))
		require.NoError(t, err)
		assert.Regexp(t, orderNumberPattern, result.Order.OrderNumber)
		assert.False(t, seen[result.Order.OrderNumber], "duplicate order number %s", result.Order.OrderNumber)
		seen[result.Order.OrderNumber] = true
	}
}
