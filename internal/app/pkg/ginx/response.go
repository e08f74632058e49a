package ginx

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"oip/checkout/internal/app/pkg/errorx"
)

// CodeProcessing 等待支付结果超时，客户端改为轮询订单
const CodeProcessing = 3001

// Response 统一响应结构
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 响应元数据，Code 与 HTTP 状态一致（CodeProcessing 除外）
type Meta struct {
	Code    int           `json:"code" example:"200"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 单个字段的校验失败
type ErrorDetail struct {
	Path string `json:"path" example:"BuyerID"`
	Info string `json:"info" example:"BuyerID is required"`
}

// ProcessingData 支付结果未就绪时返回的轮询地址
type ProcessingData struct {
	OrderID string `json:"order_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PollURL string `json:"poll_url" example:"/api/v1/orders/550e8400-e29b-41d4-a716-446655440000"`
}

func write(c *gin.Context, status int, meta Meta, data interface{}) {
	c.JSON(status, Response{Meta: meta, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Meta{Code: http.StatusOK, Message: "OK"}, data)
}

func Error(c *gin.Context, status int, message string) {
	write(c, status, Meta{Code: status, Message: message}, nil)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// Processing HTTP 200 + CodeProcessing，订单仍待支付
func Processing(c *gin.Context, orderID, pollURL string) {
	write(c, http.StatusOK,
		Meta{Code: CodeProcessing, Message: "Payment result is not available yet, please poll for results"},
		ProcessingData{OrderID: orderID, PollURL: pollURL})
}

// Fail 把领域错误映射为响应；5xx 只返回通用消息，原始错误交给 ErrorHandler 记录
func Fail(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		BadRequestWithValidation(c, validationErrs)
		return
	}

	be := errorx.FromError(err)
	if be.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
		InternalError(c, "internal server error")
		return
	}
	Error(c, be.Code, be.Message)
}

// BadRequestWithValidation 绑定失败；字段校验错误逐项列出，其余（如 JSON 格式错误）原样返回
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		BadRequest(c, err.Error())
		return
	}

	details := make([]ErrorDetail, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details = append(details, ErrorDetail{Path: fieldErr.Field(), Info: describe(fieldErr)})
	}
	write(c, http.StatusBadRequest,
		Meta{Code: http.StatusBadRequest, Message: "Validation failed", Details: details}, nil)
}

// describe 覆盖请求结构体上用到的 binding 标签
func describe(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fieldErr.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fieldErr.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fieldErr.Param())
	default:
		return field + " is invalid"
	}
}
