package order

import (
	"github.com/gin-gonic/gin"

	"oip/checkout/internal/app/domains/apimodel/request"
	"oip/checkout/internal/app/domains/apimodel/response"
	"oip/checkout/internal/app/pkg/ginx"
)

// Create godoc
// @Summary      创建订单
// @Description  校验订单类型后创建订单，金额由服务端计算；未指定类型时使用默认类型并返回 warning
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body request.CreateOrderRequest true "订单信息"
// @Success      200 {object} ginx.Response{data=response.CreateOrderResponse} "创建成功"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      422 {object} ginx.Response "订单类型被拒绝"
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	// 未带调用方时，护栏使用配置的 guard.service_name
	result, err := h.orderService.CreateOrder(c.Request.Context(), req.ToInput(c.GetHeader(CallerHeader)))
	if err != nil {
		h.fail(c, "create order failed", err)
		return
	}

	ginx.Success(c, &response.CreateOrderResponse{
		Order:   response.FromOrderEntity(result.Order),
		Warning: response.FromWarning(result.Warning),
	})
}

func (h *OrderHandler) fail(c *gin.Context, msg string, err error) {
	h.logger.WarnContext(c.Request.Context(), msg, "path", c.FullPath(), "error", err)
	ginx.Fail(c, err)
}
