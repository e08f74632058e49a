package rporder

import (
	"context"
	"errors"
	"time"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etprimitive"
)

// ErrDuplicateOrderNumber 订单号唯一键冲突（可重试）
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// ListFilter 订单列表过滤条件，零值字段不参与过滤
type ListFilter struct {
	OrderType     etorder.OrderType
	Status        etorder.OrderStatus
	PaymentStatus etorder.PaymentStatus
	BuyerID       string
	SellerID      string
	SupplierID    string
	PartnerID     string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// StateGuard 条件更新时期望的当前状态（compare-and-swap）
type StateGuard struct {
	Status        etorder.OrderStatus
	PaymentStatus etorder.PaymentStatus
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单；订单号冲突返回 ErrDuplicateOrderNumber
	Create(ctx context.Context, order *etorder.Order) error

	// GetByID 根据ID查询订单，不存在返回 errorx.ErrOrderNotFound
	GetByID(ctx context.Context, orderID string) (*etorder.Order, error)

	// GetByIDForUpdate 在事务中查询并锁定订单行
	GetByIDForUpdate(ctx context.Context, orderID string) (*etorder.Order, error)

	// GetByOrderNumber 根据订单号查询
	GetByOrderNumber(ctx context.Context, orderNumber string) (*etorder.Order, error)

	// UpdateState 按期望状态条件更新订单状态与时间戳
	// 当前状态与 expected 不一致时返回 errorx.ErrConcurrentModification
	UpdateState(ctx context.Context, order *etorder.Order, expected StateGuard) error

	// ListByBuyer 查询买家的订单（按创建时间倒序）
	ListByBuyer(ctx context.Context, buyerID string, page etprimitive.Pagination) ([]*etorder.Order, int64, error)

	// List 按条件分页查询订单列表
	List(ctx context.Context, filter ListFilter, page etprimitive.Pagination) ([]*etorder.Order, int64, error)
}
