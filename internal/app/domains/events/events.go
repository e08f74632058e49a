package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type 领域事件类型
type Type string

const (
	TypeOrderCreated     Type = "ORDER_CREATED"
	TypePaymentInitiated Type = "PAYMENT_INITIATED"
	TypePaymentCompleted Type = "PAYMENT_COMPLETED"
	TypePaymentFailed    Type = "PAYMENT_FAILED"
	TypeOrderRefunded    Type = "ORDER_REFUNDED"
	TypeOrderCancelled   Type = "ORDER_CANCELLED"
)

// Event 领域事件
type Event interface {
	EventType() Type
	OrderID() string
	OccurredAt() time.Time
}

// Base 事件公共字段
type Base struct {
	Order string    `json:"orderId"`
	At    time.Time `json:"occurredAt"`
}

func (b Base) OrderID() string       { return b.Order }
func (b Base) OccurredAt() time.Time { return b.At }

// OrderCreated 订单已创建
type OrderCreated struct {
	Base
	OrderNumber string          `json:"orderNumber"`
	OrderType   string          `json:"orderType"`
	BuyerID     string          `json:"buyerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Warning     string          `json:"warning,omitempty"`
}

func (OrderCreated) EventType() Type { return TypeOrderCreated }

// PaymentInitiated 已创建待支付记录
type PaymentInitiated struct {
	Base
	PaymentID  string          `json:"paymentId"`
	PGProvider string          `json:"pgProvider"`
	Amount     decimal.Decimal `json:"amount"`
}

func (PaymentInitiated) EventType() Type { return TypePaymentInitiated }

// PaymentCompleted 支付成功，订单已进入 PAID
type PaymentCompleted struct {
	Base
	PaymentID  string          `json:"paymentId"`
	PaymentKey string          `json:"paymentKey"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
}

func (PaymentCompleted) EventType() Type { return TypePaymentCompleted }

// PaymentFailed 支付失败，订单仍为 CREATED
type PaymentFailed struct {
	Base
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason"`
}

func (PaymentFailed) EventType() Type { return TypePaymentFailed }

// OrderRefunded 订单已退款
type OrderRefunded struct {
	Base
	PaymentID string          `json:"paymentId"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Partial   bool            `json:"partial"`
}

func (OrderRefunded) EventType() Type { return TypeOrderRefunded }

// OrderCancelled 订单已取消
type OrderCancelled struct {
	Base
	Reason string `json:"reason"`
}

func (OrderCancelled) EventType() Type { return TypeOrderCancelled }

// Envelope 事件的传输格式
type Envelope struct {
	Type       Type            `json:"type"`
	OrderID    string          `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode 序列化事件
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event failed: %w", e.EventType(), err)
	}
	return json.Marshal(Envelope{
		Type:       e.EventType(),
		OrderID:    e.OrderID(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	})
}

// Decode 反序列化事件
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope failed: %w", err)
	}

	var e Event
	switch env.Type {
	case TypeOrderCreated:
		e = &OrderCreated{}
	case TypePaymentInitiated:
		e = &PaymentInitiated{}
	case TypePaymentCompleted:
		e = &PaymentCompleted{}
	case TypePaymentFailed:
		e = &PaymentFailed{}
	case TypeOrderRefunded:
		e = &OrderRefunded{}
	case TypeOrderCancelled:
		e = &OrderCancelled{}
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}

	if err := json.Unmarshal(env.Payload, e); err != nil {
		return nil, fmt.Errorf("unmarshal %s event failed: %w", env.Type, err)
	}
	return e, nil
}
