package routers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/modules/mdaudit"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/domains/modules/mdledger"
	"oip/checkout/internal/app/domains/modules/mdorder"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/domains/repo/rporderlog"
	"oip/checkout/internal/app/domains/repo/rppayment"
	"oip/checkout/internal/app/domains/repo/rpsettlement"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/domains/services/svorder"
	"oip/checkout/internal/app/domains/services/svsettlement"
	"oip/checkout/internal/app/infra/persistence/dbtest"
	"oip/checkout/internal/app/pkg/logger"
	"oip/checkout/internal/app/server/handlers/order"
	"oip/checkout/internal/app/server/handlers/settlement"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	log := logger.NewNopLogger()

	guard, err := mdguard.NewGuard(mdguard.PolicyFromConfig("checkout-test", "GENERIC", []string{"PHARMACY_RX"}))
	require.NoError(t, err)

	orderService := svorder.NewOrderService(
		mdorder.NewOrderModule(rporder.NewOrderRepository(db)),
		mdledger.NewLedgerModule(rppayment.NewPaymentRepository(db)),
		mdaudit.NewAuditModule(rporderlog.NewOrderLogRepository(db)),
		guard,
		rptx.NewTxManager(db),
		events.NewBus(log),
		log,
		svorder.WithClock(func() time.Time { return testNow }),
	)
	settlementService := svsettlement.NewSettlementService(rpsettlement.NewSettlementRepository(db), log)

	return SetupRoutes(
		order.NewOrderHandler(orderService, nil, log),
		settlement.NewSettlementHandler(settlementService, log),
		nil,
		log,
	)
}

type apiResponse struct {
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Path string `json:"path"`
			Info string `json:"info"`
		} `json:"details"`
	} `json:"meta"`
	Data map[string]interface{} `json:"data"`
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, *apiResponse) {
	t.Helper()
	return callWithHeaders(t, r, method, path, body, nil)
}

func callWithHeaders(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) (int, *apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w.Code, &resp
}

func createBody(orderType string) map[string]interface{} {
	return map[string]interface{}{
		"order_type":  orderType,
		"buyer_id":    "buyer-1",
		"seller_id":   "seller-1",
		"supplier_id": "supplier-1",
		"items": []map[string]interface{}{
			{"product_id": "p-1", "quantity": 2, "unit_price": "1000"},
		},
	}
}

func createOrder(t *testing.T, r *gin.Engine) map[string]interface{} {
	t.Helper()
	code, resp := call(t, r, http.MethodPost, "/api/v1/orders", createBody("GENERIC"))
	require.Equal(t, http.StatusOK, code, resp.Meta.Message)
	return resp.Data["order"].(map[string]interface{})
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	created := createOrder(t, r)
	orderID := created["id"].(string)
	assert.Equal(t, "2000", created["total_amount"])
	assert.Equal(t, "CREATED", created["status"])

	code, resp := call(t, r, http.MethodGet, "/api/v1/order-numbers/"+created["order_number"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, orderID, resp.Data["id"])

	complete := map[string]interface{}{"payment_key": "pk1", "method": "card", "amount": "2000"}
	code, resp = call(t, r, http.MethodPost, "/api/v1/orders/"+orderID+"/payments/complete", complete)
	require.Equal(t, http.StatusOK, code, resp.Meta.Message)
	assert.Equal(t, false, resp.Data["duplicate"])
	assert.Equal(t, "PAID", resp.Data["order"].(map[string]interface{})["status"])

	code, resp = call(t, r, http.MethodPost, "/api/v1/orders/"+orderID+"/payments/complete", complete)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp.Data["duplicate"])

	code, resp = call(t, r, http.MethodGet,
		"/api/v1/settlements/summary?period_start=2024-03-01T00:00:00Z&period_end=2024-03-31T23:59:59Z&group_by=orderType", nil)
	require.Equal(t, http.StatusOK, code, resp.Meta.Message)
	assert.Equal(t, float64(1), resp.Data["total_orders"])
	assert.Equal(t, "2000", resp.Data["total_revenue"])

	code, _ = call(t, r, http.MethodPost, "/api/v1/orders/"+orderID+"/refund", map[string]interface{}{"reason": "customer request"})
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, http.MethodPost, "/api/v1/orders/"+orderID+"/refund", nil)
	assert.Equal(t, http.StatusConflict, code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID+"/logs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var logs struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs.Data, 3)
	assert.Equal(t, "REFUNDED", logs.Data[0]["action"])
	assert.Equal(t, "PAYMENT_SUCCESS", logs.Data[1]["action"])
	assert.Equal(t, "CREATED", logs.Data[2]["action"])
}

func TestCreateOrder_ErrorResponses(t *testing.T) {
	r := newTestRouter(t)

	code, resp := call(t, r, http.MethodPost, "/api/v1/orders", createBody("pharmacy_rx"))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Meta.Message, "PHARMACY_RX")
	assert.Contains(t, resp.Meta.Message, "service=checkout-test")

	code, resp = callWithHeaders(t, r, http.MethodPost, "/api/v1/orders", createBody("PHARMACY_RX"),
		map[string]string{order.CallerHeader: "storefront"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Meta.Message, "service=storefront")

	body := createBody("GENERIC")
	delete(body, "buyer_id")
	code, resp = call(t, r, http.MethodPost, "/api/v1/orders", body)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, resp.Meta.Details)
	assert.Equal(t, "BuyerID", resp.Meta.Details[0].Path)

	code, resp = call(t, r, http.MethodPost, "/api/v1/orders", createBody(""))
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, resp.Data["warning"])
}

func TestOrderQueries(t *testing.T) {
	r := newTestRouter(t)
	created := createOrder(t, r)
	createOrder(t, r)

	code, _ := call(t, r, http.MethodGet, "/api/v1/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := call(t, r, http.MethodGet, "/api/v1/buyers/buyer-1/orders?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), resp.Data["total"])
	assert.Len(t, resp.Data["items"], 1)

	code, _ = call(t, r, http.MethodPost, "/api/v1/orders/"+created["id"].(string)+"/cancel", nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = call(t, r, http.MethodGet, "/api/v1/orders?status=CANCELLED", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), resp.Data["total"])

	code, _ = call(t, r, http.MethodGet, "/api/v1/orders?status=SHIPPED", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSettlementAndWaitErrors(t *testing.T) {
	r := newTestRouter(t)

	code, _ := call(t, r, http.MethodGet,
		"/api/v1/settlements/summary?period_start=2024-03-01T00:00:00Z&period_end=2024-03-31T23:59:59Z&group_by=buyerId", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, r, http.MethodGet, "/api/v1/settlements/orders", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, r, http.MethodGet, "/api/v1/orders/any/payments/wait", nil)
	assert.Equal(t, http.StatusNotImplemented, code)

	code, _ = call(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}
