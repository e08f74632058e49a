package errorutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"oip/checkout/internal/app/pkg/errorx"
)

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errorx.NewInvalidTransition("o", "PAID", "pay", "")))
	assert.False(t, IsRetryable(fmt.Errorf("lookup: %w", errorx.ErrOrderNotFound)))
	assert.True(t, IsRetryable(errorx.Persistence("save order", errors.New("connection reset"))))
	assert.True(t, IsRetryable(Retriable("queue unavailable")))
	assert.False(t, IsRetryable(NonRetriable("bad message")))
}

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrap(errorx.ErrPaymentAmountMismatch)
	assert.Equal(t, 422, err.Code)
	assert.True(t, errors.Is(err, errorx.ErrPaymentAmountMismatch))
}
