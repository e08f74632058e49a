package order

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"oip/checkout/internal/app/domains/apimodel/request"
	"oip/checkout/internal/app/domains/apimodel/response"
	"oip/checkout/internal/app/domains/modules/mdnotify"
	"oip/checkout/internal/app/pkg/ginx"
)

// InitiatePayment 发起支付，创建待支付记录
// POST /api/v1/orders/:id/payments
func (h *OrderHandler) InitiatePayment(c *gin.Context) {
	var req request.InitiatePaymentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	payment, err := h.orderService.InitiatePayment(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, "initiate payment failed", err)
		return
	}
	ginx.Success(c, response.FromPaymentEntity(payment))
}

// CompletePayment 支付成功（同一 payment_key 重复提交时返回 duplicate=true）
// POST /api/v1/orders/:id/payments/complete
func (h *OrderHandler) CompletePayment(c *gin.Context) {
	var req request.CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.orderService.CompletePayment(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, "complete payment failed", err)
		return
	}

	ginx.Success(c, &response.PaymentResultResponse{
		Order:     response.FromOrderEntity(result.Order),
		Payment:   response.FromPaymentEntity(result.Payment),
		Duplicate: result.Duplicate,
	})
}

// FailPayment 支付失败，订单保持可支付
// POST /api/v1/orders/:id/payments/fail
func (h *OrderHandler) FailPayment(c *gin.Context) {
	var req request.FailPaymentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	payment, err := h.orderService.FailPayment(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, "fail payment failed", err)
		return
	}
	ginx.Success(c, response.FromPaymentEntity(payment))
}

// ListPayments 订单支付记录
// GET /api/v1/orders/:id/payments
func (h *OrderHandler) ListPayments(c *gin.Context) {
	payments, err := h.orderService.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "list payments failed", err)
		return
	}
	ginx.Success(c, response.FromPaymentEntities(payments))
}

// WaitPayment 等待支付结果（Smart Wait）
// GET /api/v1/orders/:id/payments/wait?wait=10
// 超时返回 code=3001，调用方通过订单详情接口轮询
func (h *OrderHandler) WaitPayment(c *gin.Context) {
	if h.waiter == nil {
		ginx.Error(c, 501, "payment wait is not enabled")
		return
	}

	waitSeconds := DefaultWaitSeconds
	if waitStr := c.Query("wait"); waitStr != "" {
		w, err := strconv.Atoi(waitStr)
		if err != nil || w <= 0 {
			ginx.BadRequest(c, "wait must be a positive integer")
			return
		}
		waitSeconds = w
	}
	if waitSeconds > MaxWaitSeconds {
		waitSeconds = MaxWaitSeconds
	}

	orderID := c.Param("id")
	outcome, err := h.waiter.WaitForPayment(c.Request.Context(), orderID, time.Duration(waitSeconds)*time.Second)
	if errors.Is(err, mdnotify.ErrWaitTimeout) {
		ginx.Processing(c, orderID, fmt.Sprintf("/api/v1/orders/%s", orderID))
		return
	}
	if err != nil {
		h.fail(c, "wait payment failed", err)
		return
	}
	ginx.Success(c, response.FromPaymentOutcome(outcome))
}

// bindOptionalJSON 请求体可以为空
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		ginx.BadRequestWithValidation(c, err)
		return false
	}
	return true
}
