package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistence_PassesBusinessErrorsThrough(t *testing.T) {
	business := NewInvalidTransition("order-1", "PAID", "cancel", "")
	assert.Same(t, business, Persistence("save", business))

	wrapped := Persistence("save order", errors.New("disk full"))
	assert.True(t, errors.Is(wrapped, ErrPersistence))
	assert.False(t, IsBusiness(wrapped))
	assert.Equal(t, wrapped, Persistence("outer", wrapped))
	assert.Nil(t, Persistence("noop", nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get: %w", ErrOrderNotFound)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&PaymentNotFoundError{OrderID: "o"}))
	assert.Equal(t, http.StatusConflict, HTTPStatus(NewInvalidTransition("o", "CREATED", "refund", "")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(&InvalidOrderTypeError{OrderType: "X"}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidPeriod))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Persistence("op", errors.New("boom"))))
}

func TestInvalidStateTransitionError_Message(t *testing.T) {
	err := NewInvalidTransition("order-1", "CREATED", "refund", "only paid orders can be refunded")
	assert.Equal(t, "cannot refund order order-1 in state CREATED: only paid orders can be refunded", err.Error())
}
