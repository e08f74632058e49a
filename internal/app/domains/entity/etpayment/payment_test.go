package etpayment

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

func TestPayment_SuccessThenRefund(t *testing.T) {
	p := NewPending("pay-1", "order-1", "TOSS", decimal.NewFromInt(2000), now)

	require.NoError(t, p.MarkSuccess(Approval{PaymentKey: "pk1", Method: "card"}, now))
	assert.Equal(t, StatusSuccess, p.Status)
	assert.Equal(t, "pk1", p.PaymentKey)
	require.NotNil(t, p.ApprovedAt)
	assert.True(t, p.ApprovedAt.Equal(now))

	err := p.MarkRefunded(decimal.NewFromInt(2001), "too much", now)
	assert.True(t, errors.Is(err, errorx.ErrInvalidRefundAmount))
	assert.Equal(t, StatusSuccess, p.Status)

	require.NoError(t, p.MarkRefunded(decimal.NewFromInt(500), "damaged", now))
	assert.Equal(t, StatusRefunded, p.Status)
	assert.True(t, p.IsPartialRefund())

	err = p.MarkRefunded(decimal.NewFromInt(500), "again", now)
	assert.True(t, errors.Is(err, errorx.ErrInvalidStateTransition))
}

func TestPayment_Failed(t *testing.T) {
	p := NewPending("pay-1", "order-1", "TOSS", decimal.NewFromInt(2000), now)

	require.NoError(t, p.MarkFailed("declined", now))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "declined", p.FailureReason)

	err := p.MarkSuccess(Approval{PaymentKey: "pk1"}, now)
	assert.True(t, errors.Is(err, errorx.ErrInvalidStateTransition))
}

func TestPayment_FullRefundIsNotPartial(t *testing.T) {
	p := NewPending("pay-1", "order-1", "TOSS", decimal.NewFromInt(2000), now)
	require.NoError(t, p.MarkSuccess(Approval{PaymentKey: "pk1", ApprovedAt: now.Add(-time.Minute)}, now))
	assert.True(t, p.ApprovedAt.Equal(now.Add(-time.Minute)))

	require.NoError(t, p.MarkRefunded(decimal.NewFromInt(2000), "", now))
	assert.False(t, p.IsPartialRefund())
}
