package ginx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oip/checkout/internal/app/pkg/errorx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp, c
}

func TestFail_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "blocked order type",
			err:        &errorx.InvalidOrderTypeError{OrderType: "PHARMACY_RX", Service: "storefront"},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "service=storefront",
		},
		{
			name:       "order not found",
			err:        fmt.Errorf("load: %w", errorx.ErrOrderNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "order not found",
		},
		{
			name:       "illegal transition",
			err:        errorx.NewInvalidTransition("o-1", "PAID", "cancel", "only created orders can be cancelled"),
			wantStatus: http.StatusConflict,
			wantMsg:    "only created orders can be cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp, c := render(t, func(c *gin.Context) { Fail(c, tt.err) })
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, resp.Meta.Code)
			assert.Contains(t, resp.Meta.Message, tt.wantMsg)
			assert.Empty(t, c.Errors)
		})
	}
}

func TestFail_HidesStorageErrors(t *testing.T) {
	err := errorx.Persistence("save order", errors.New("dial tcp 10.0.0.3:3306: connection refused"))

	w, resp, c := render(t, func(c *gin.Context) { Fail(c, err) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", resp.Meta.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
	require.Len(t, c.Errors, 1)
}

func TestBadRequestWithValidation_ListsFields(t *testing.T) {
	type createRequest struct {
		BuyerID string   `validate:"required"`
		Items   []string `validate:"min=1"`
		Status  string   `validate:"omitempty,oneof=CREATED PAID"`
	}
	err := validator.New().Struct(createRequest{Items: []string{}, Status: "SHIPPED"})
	require.Error(t, err)

	w, resp, _ := render(t, func(c *gin.Context) { Fail(c, err) })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", resp.Meta.Message)
	assert.Equal(t, []ErrorDetail{
		{Path: "BuyerID", Info: "BuyerID is required"},
		{Path: "Items", Info: "Items must contain at least 1 item(s)"},
		{Path: "Status", Info: "Status must be one of [CREATED PAID]"},
	}, resp.Meta.Details)
}

func TestBadRequestWithValidation_MalformedBody(t *testing.T) {
	w, resp, _ := render(t, func(c *gin.Context) {
		BadRequestWithValidation(c, errors.New("unexpected EOF"))
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unexpected EOF", resp.Meta.Message)
	assert.Empty(t, resp.Meta.Details)
}

func TestProcessing(t *testing.T) {
	w, resp, _ := render(t, func(c *gin.Context) {
		Processing(c, "o-1", "/api/v1/orders/o-1")
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeProcessing, resp.Meta.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "o-1", data["order_id"])
	assert.Equal(t, "/api/v1/orders/o-1", data["poll_url"])
}
