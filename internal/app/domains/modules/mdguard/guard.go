package mdguard

import (
	"fmt"
	"sort"
	"time"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/pkg/errorx"
)

// Policy 护栏策略，启动时从配置构建一次
type Policy struct {
	ServiceName string
	DefaultType etorder.OrderType
	Blocked     []etorder.OrderType
}

// ValidationContext 调用方上下文，用于拒绝时的排查信息
type ValidationContext struct {
	Service string
	At      time.Time
}

// Warning 非错误的提示信号
type Warning struct {
	Code    string
	Message string
}

// WarningDefaultOrderType 未指定订单类型，回退到默认类型
const WarningDefaultOrderType = "DEFAULT_ORDER_TYPE"

// Decision 校验结果
type Decision struct {
	OrderType etorder.OrderType
	Warning   *Warning
}

// Guard 订单类型护栏
// 纯函数校验，不做任何 I/O，所有创建路径都必须同步经过它
type Guard struct {
	serviceName string
	defaultType etorder.OrderType
	blocked     map[etorder.OrderType]struct{}
}

// NewGuard 创建护栏
func NewGuard(p Policy) (*Guard, error) {
	defaultType := p.DefaultType.Normalize()
	if defaultType == "" {
		defaultType = etorder.OrderTypeGeneric
	}

	blocked := make(map[etorder.OrderType]struct{}, len(p.Blocked))
	for _, t := range p.Blocked {
		if n := t.Normalize(); n != "" {
			blocked[n] = struct{}{}
		}
	}
	if _, ok := blocked[defaultType]; ok {
		return nil, fmt.Errorf("default order type %s is blocked", defaultType)
	}

	return &Guard{
		serviceName: p.ServiceName,
		defaultType: defaultType,
		blocked:     blocked,
	}, nil
}

// PolicyFromConfig 从配置项构建策略
func PolicyFromConfig(serviceName, defaultType string, blocked []string) Policy {
	p := Policy{
		ServiceName: serviceName,
		DefaultType: etorder.OrderType(defaultType),
	}
	for _, b := range blocked {
		p.Blocked = append(p.Blocked, etorder.OrderType(b))
	}
	return p
}

// Validate 校验订单类型是否允许创建
// 1. 空类型回退到默认类型，并返回 Warning
// 2. 命中黑名单返回 InvalidOrderTypeError
func (g *Guard) Validate(orderType etorder.OrderType, vctx ValidationContext) (Decision, error) {
	normalized := orderType.Normalize()

	var warning *Warning
	if normalized == "" {
		normalized = g.defaultType
		warning = &Warning{
			Code:    WarningDefaultOrderType,
			Message: fmt.Sprintf("order type not specified, defaulted to %s", g.defaultType),
		}
	}

	if g.IsBlocked(normalized) {
		service := vctx.Service
		if service == "" {
			service = g.serviceName
		}
		at := vctx.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		return Decision{}, &errorx.InvalidOrderTypeError{
			OrderType: string(normalized),
			Service:   service,
			At:        at,
		}
	}

	return Decision{OrderType: normalized, Warning: warning}, nil
}

// IsBlocked 是否在黑名单中
func (g *Guard) IsBlocked(orderType etorder.OrderType) bool {
	_, ok := g.blocked[orderType.Normalize()]
	return ok
}

// BlockedTypes 返回黑名单（排序后，便于展示）
func (g *Guard) BlockedTypes() []string {
	types := make([]string, 0, len(g.blocked))
	for t := range g.blocked {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}
