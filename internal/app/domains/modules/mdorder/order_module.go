package mdorder

import (
	"context"
	"errors"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etprimitive"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/pkg/errorx"
)

// OrderModule 订单模块（数据操作层）
// 存储错误统一包装为 PersistenceError，业务错误原样透传
type OrderModule struct {
	orderRepo rporder.OrderRepository
}

// NewOrderModule 创建订单模块
func NewOrderModule(orderRepo rporder.OrderRepository) *OrderModule {
	return &OrderModule{orderRepo: orderRepo}
}

// CreateOrder 创建订单；订单号冲突原样返回 rporder.ErrDuplicateOrderNumber 以便重试
func (m *OrderModule) CreateOrder(ctx context.Context, order *etorder.Order) error {
	err := m.orderRepo.Create(ctx, order)
	if err == nil || IsDuplicateOrderNumber(err) {
		return err
	}
	return errorx.Persistence("create order", err)
}

// GetOrder 查询订单
func (m *OrderModule) GetOrder(ctx context.Context, orderID string) (*etorder.Order, error) {
	order, err := m.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, errorx.Persistence("get order", err)
	}
	return order, nil
}

// LockOrder 事务内查询并锁定订单
func (m *OrderModule) LockOrder(ctx context.Context, orderID string) (*etorder.Order, error) {
	order, err := m.orderRepo.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, errorx.Persistence("lock order", err)
	}
	return order, nil
}

// GetOrderByNumber 根据订单号查询
func (m *OrderModule) GetOrderByNumber(ctx context.Context, orderNumber string) (*etorder.Order, error) {
	order, err := m.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, errorx.Persistence("get order by number", err)
	}
	return order, nil
}

// SaveState 条件更新订单状态，expected 为变更前的状态
func (m *OrderModule) SaveState(ctx context.Context, order *etorder.Order, expected rporder.StateGuard) error {
	if err := m.orderRepo.UpdateState(ctx, order, expected); err != nil {
		return errorx.Persistence("update order state", err)
	}
	return nil
}

// ListByBuyer 查询买家订单
func (m *OrderModule) ListByBuyer(ctx context.Context, buyerID string, page etprimitive.Pagination) ([]*etorder.Order, int64, error) {
	orders, total, err := m.orderRepo.ListByBuyer(ctx, buyerID, page)
	if err != nil {
		return nil, 0, errorx.Persistence("list buyer orders", err)
	}
	return orders, total, nil
}

// ListOrders 查询订单列表
func (m *OrderModule) ListOrders(ctx context.Context, filter rporder.ListFilter, page etprimitive.Pagination) ([]*etorder.Order, int64, error) {
	orders, total, err := m.orderRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, errorx.Persistence("list orders", err)
	}
	return orders, total, nil
}

// IsDuplicateOrderNumber 是否为订单号冲突
func IsDuplicateOrderNumber(err error) bool {
	return errors.Is(err, rporder.ErrDuplicateOrderNumber)
}
