package etorder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/pkg/errorx"
)

// 错误定义
var (
	ErrInvalidOrderID     = errors.New("order ID cannot be empty")
	ErrInvalidOrderNumber = errors.New("order number cannot be empty")
	ErrInvalidBuyer       = errors.New("buyer ID cannot be empty")
	ErrInvalidSeller      = errors.New("seller ID cannot be empty")
	ErrInvalidSupplier    = errors.New("supplier ID cannot be empty")
	ErrEmptyItems         = errors.New("order must contain at least one item")
	ErrInvalidQuantity    = errors.New("item quantity must be positive")
	ErrInvalidUnitPrice   = errors.New("item unit price cannot be negative")
	ErrInvalidShippingFee = errors.New("shipping fee cannot be negative")
	ErrInvalidDiscount    = errors.New("discount cannot be negative")
	ErrNegativeTotal      = errors.New("discount exceeds order amount")
)

// OrderType 订单类型，标识产生订单的业务线
type OrderType string

const (
	OrderTypeGeneric      OrderType = "GENERIC"
	OrderTypeDropshipping OrderType = "DROPSHIPPING"
	OrderTypeCosmetics    OrderType = "COSMETICS"
	OrderTypeTourism      OrderType = "TOURISM"
	OrderTypePharmacy     OrderType = "PHARMACY"
)

// Normalize 去除空白并统一为大写
func (t OrderType) Normalize() OrderType {
	return OrderType(strings.ToUpper(strings.TrimSpace(string(t))))
}

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// PaymentStatus 订单维度的支付状态
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Order 订单聚合根（领域对象）
type Order struct {
	ID          string
	OrderNumber string
	OrderType   OrderType

	BuyerID    string
	SellerID   string
	SupplierID string
	PartnerID  string // 可选，空字符串表示无合作方

	Items       []*OrderItem
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal

	ShippingAddress *Address
	Memo            string

	Status        OrderStatus
	PaymentStatus PaymentStatus

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	RefundedAt  *time.Time
	CancelledAt *time.Time
}

// OrderItem 订单行（值对象）
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Address 收货地址（值对象）
type Address struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	ZipCode       string `json:"zipCode"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2,omitempty"`
}

// NewOrderParams 创建订单所需参数
type NewOrderParams struct {
	ID              string
	OrderNumber     string
	OrderType       OrderType
	BuyerID         string
	SellerID        string
	SupplierID      string
	PartnerID       string
	Items           []*OrderItem
	ShippingFee     decimal.Decimal
	Discount        decimal.Decimal
	ShippingAddress *Address
	Memo            string
	Now             time.Time
}

// NewOrder 创建订单（工厂方法）
// 行小计与订单金额一律重新计算，不信任调用方传入的值
func NewOrder(p NewOrderParams) (*Order, error) {
	if p.ID == "" {
		return nil, ErrInvalidOrderID
	}
	if p.OrderNumber == "" {
		return nil, ErrInvalidOrderNumber
	}
	if err := validateParties(p.BuyerID, p.SellerID, p.SupplierID); err != nil {
		return nil, err
	}

	items, subtotal, err := PriceItems(p.Items)
	if err != nil {
		return nil, err
	}
	total, err := ComputeTotal(subtotal, p.ShippingFee, p.Discount)
	if err != nil {
		return nil, err
	}

	return &Order{
		ID:              p.ID,
		OrderNumber:     p.OrderNumber,
		OrderType:       p.OrderType,
		BuyerID:         p.BuyerID,
		SellerID:        p.SellerID,
		SupplierID:      p.SupplierID,
		PartnerID:       p.PartnerID,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     p.ShippingFee,
		Discount:        p.Discount,
		TotalAmount:     total,
		ShippingAddress: p.ShippingAddress,
		Memo:            p.Memo,
		Status:          OrderStatusCreated,
		PaymentStatus:   PaymentStatusPending,
		CreatedAt:       p.Now,
		UpdatedAt:       p.Now,
	}, nil
}

func validateParties(buyerID, sellerID, supplierID string) error {
	if buyerID == "" {
		return ErrInvalidBuyer
	}
	if sellerID == "" {
		return ErrInvalidSeller
	}
	if supplierID == "" {
		return ErrInvalidSupplier
	}
	return nil
}

// PriceItems 校验订单行并重新计算行小计，返回新的订单行与商品小计
func PriceItems(in []*OrderItem) ([]*OrderItem, decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, decimal.Zero, ErrEmptyItems
	}

	subtotal := decimal.Zero
	items := make([]*OrderItem, 0, len(in))
	for i, item := range in {
		if item == nil {
			return nil, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrEmptyItems)
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrInvalidUnitPrice)
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, &OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return items, subtotal, nil
}

// ComputeTotal totalAmount = subtotal + shippingFee - discount
func ComputeTotal(subtotal, shippingFee, discount decimal.Decimal) (decimal.Decimal, error) {
	if shippingFee.IsNegative() {
		return decimal.Zero, ErrInvalidShippingFee
	}
	if discount.IsNegative() {
		return decimal.Zero, ErrInvalidDiscount
	}
	total := subtotal.Add(shippingFee).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero, ErrNegativeTotal
	}
	return total, nil
}

// CanPay 是否允许进入支付完成流程
func (o *Order) CanPay() bool {
	return o.Status == OrderStatusCreated && o.PaymentStatus == PaymentStatusPending
}

// MarkPaid 支付完成（领域行为）: CREATED -> PAID
func (o *Order) MarkPaid(at time.Time) error {
	if !o.CanPay() {
		return errorx.NewInvalidTransition(o.ID, string(o.Status), "pay", "order is not awaiting payment")
	}
	o.Status = OrderStatusPaid
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &at
	o.UpdatedAt = at
	return nil
}

// MarkRefunded 退款（领域行为）: PAID -> REFUNDED
func (o *Order) MarkRefunded(at time.Time) error {
	if o.PaymentStatus != PaymentStatusPaid || o.Status != OrderStatusPaid {
		return errorx.NewInvalidTransition(o.ID, string(o.Status), "refund", "only paid orders can be refunded")
	}
	o.Status = OrderStatusRefunded
	o.PaymentStatus = PaymentStatusRefunded
	o.RefundedAt = &at
	o.UpdatedAt = at
	return nil
}

// Cancel 取消订单（领域行为）: CREATED -> CANCELLED
func (o *Order) Cancel(at time.Time) error {
	if o.Status != OrderStatusCreated {
		return errorx.NewInvalidTransition(o.ID, string(o.Status), "cancel", "only unpaid orders can be cancelled")
	}
	o.Status = OrderStatusCancelled
	o.CancelledAt = &at
	o.UpdatedAt = at
	return nil
}

// EnsurePayable 校验订单仍可接受支付失败/发起支付等操作
func (o *Order) EnsurePayable(action string) error {
	if !o.CanPay() {
		return errorx.NewInvalidTransition(o.ID, string(o.Status), action, "order is not awaiting payment")
	}
	return nil
}
