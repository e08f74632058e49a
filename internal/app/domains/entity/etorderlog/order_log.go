package etorderlog

import "time"

// Action 审计动作
type Action string

const (
	ActionCreated          Action = "CREATED"
	ActionPaymentInitiated Action = "PAYMENT_INITIATED"
	ActionPaymentSuccess   Action = "PAYMENT_SUCCESS"
	ActionPaymentFailed    Action = "PAYMENT_FAILED"
	ActionRefunded         Action = "REFUNDED"
	ActionCancelled        Action = "CANCELLED"
)

// PerformerType 操作者类型
type PerformerType string

const (
	PerformerBuyer   PerformerType = "BUYER"
	PerformerSeller  PerformerType = "SELLER"
	PerformerAdmin   PerformerType = "ADMIN"
	PerformerSystem  PerformerType = "SYSTEM"
	PerformerGateway PerformerType = "GATEWAY"
)

// SystemActor 未指定操作者时使用
const SystemActor = "system"

// Performer 操作者
type Performer struct {
	ID   string
	Type PerformerType
}

// OrDefault 未填写的字段使用系统操作者
func (p Performer) OrDefault(defaultType PerformerType) Performer {
	if p.ID == "" {
		p.ID = SystemActor
	}
	if p.Type == "" {
		p.Type = defaultType
	}
	return p
}

// OrderLog 审计日志条目（只读）
type OrderLog struct {
	ID             int64
	OrderID        string
	Action         Action
	PreviousStatus string
	NewStatus      string
	PerformedBy    string
	PerformerType  PerformerType
	Message        string
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}

// Entry 写入审计日志的参数
type Entry struct {
	OrderID        string
	Action         Action
	PreviousStatus string
	NewStatus      string
	Performer      Performer
	Message        string
	Metadata       map[string]interface{}
	At             time.Time
}
