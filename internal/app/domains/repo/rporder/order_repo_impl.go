package rporder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oip/checkout/common/entity"
	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etprimitive"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/pkg/errorx"
)

// OrderRepositoryImpl 订单仓储实现（MySQL）
type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// Create 创建订单，将领域对象转换为 GORM 模型后存储
func (r *OrderRepositoryImpl) Create(ctx context.Context, order *etorder.Order) error {
	po, err := toGormModel(order)
	if err != nil {
		return err
	}
	if err := rptx.DB(ctx, r.db).Create(po).Error; err != nil {
		if rptx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, order.OrderNumber)
		}
		return err
	}
	return nil
}

// GetByID 根据ID查询订单，将 GORM 模型转换为领域对象
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, orderID string) (*etorder.Order, error) {
	return r.first(rptx.DB(ctx, r.db).Where("id = ?", orderID))
}

// GetByIDForUpdate 查询并加行锁（SELECT ... FOR UPDATE），需在事务中调用
func (r *OrderRepositoryImpl) GetByIDForUpdate(ctx context.Context, orderID string) (*etorder.Order, error) {
	return r.first(rptx.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID))
}

// GetByOrderNumber 根据订单号查询
func (r *OrderRepositoryImpl) GetByOrderNumber(ctx context.Context, orderNumber string) (*etorder.Order, error) {
	return r.first(rptx.DB(ctx, r.db).Where("order_number = ?", orderNumber))
}

func (r *OrderRepositoryImpl) first(query *gorm.DB) (*etorder.Order, error) {
	var po entity.Order
	if err := query.First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainModel(&po)
}

// UpdateState 条件更新订单状态
func (r *OrderRepositoryImpl) UpdateState(ctx context.Context, order *etorder.Order, expected StateGuard) error {
	result := rptx.DB(ctx, r.db).
		Model(&entity.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?",
			order.ID, string(expected.Status), string(expected.PaymentStatus)).
		Updates(map[string]interface{}{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"paid_at":        order.PaidAt,
			"refunded_at":    order.RefundedAt,
			"cancelled_at":   order.CancelledAt,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order_id=%s expected=%s/%s",
			errorx.ErrConcurrentModification, order.ID, expected.Status, expected.PaymentStatus)
	}
	return nil
}

// ListByBuyer 查询买家订单
func (r *OrderRepositoryImpl) ListByBuyer(ctx context.Context, buyerID string, page etprimitive.Pagination) ([]*etorder.Order, int64, error) {
	return r.List(ctx, ListFilter{BuyerID: buyerID}, page)
}

// List 分页查询订单列表
func (r *OrderRepositoryImpl) List(ctx context.Context, filter ListFilter, page etprimitive.Pagination) ([]*etorder.Order, int64, error) {
	page = page.Normalize()

	var total int64
	var pos []entity.Order

	query := applyListFilter(rptx.DB(ctx, r.db).Model(&entity.Order{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(page.Offset()).Limit(page.Limit).
		Order("created_at DESC").Order("id DESC").
		Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*etorder.Order, 0, len(pos))
	for i := range pos {
		order, err := toDomainModel(&pos[i])
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}

	return orders, total, nil
}

func applyListFilter(query *gorm.DB, f ListFilter) *gorm.DB {
	if f.OrderType != "" {
		query = query.Where("order_type = ?", string(f.OrderType))
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(f.PaymentStatus))
	}
	if f.BuyerID != "" {
		query = query.Where("buyer_id = ?", f.BuyerID)
	}
	if f.SellerID != "" {
		query = query.Where("seller_id = ?", f.SellerID)
	}
	if f.SupplierID != "" {
		query = query.Where("supplier_id = ?", f.SupplierID)
	}
	if f.PartnerID != "" {
		query = query.Where("partner_id = ?", f.PartnerID)
	}
	if f.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		query = query.Where("created_at <= ?", *f.CreatedTo)
	}
	return query
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(order *etorder.Order) (*entity.Order, error) {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, err
	}

	po := &entity.Order{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		OrderType:       string(order.OrderType),
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		SupplierID:      order.SupplierID,
		Items:           datatypes.JSON(itemsJSON),
		Subtotal:        order.Subtotal,
		ShippingFee:     order.ShippingFee,
		Discount:        order.Discount,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: datatypes.JSON(addressJSON),
		Memo:            order.Memo,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		PaidAt:          order.PaidAt,
		RefundedAt:      order.RefundedAt,
		CancelledAt:     order.CancelledAt,
	}
	if order.PartnerID != "" {
		partnerID := order.PartnerID
		po.PartnerID = &partnerID
	}

	return po, nil
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.Order) (*etorder.Order, error) {
	var items []*etorder.OrderItem
	if len(po.Items) > 0 {
		if err := json.Unmarshal(po.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal order items failed: %w", err)
		}
	}

	order := &etorder.Order{
		ID:            po.ID,
		OrderNumber:   po.OrderNumber,
		OrderType:     etorder.OrderType(po.OrderType),
		BuyerID:       po.BuyerID,
		SellerID:      po.SellerID,
		SupplierID:    po.SupplierID,
		Items:         items,
		Subtotal:      po.Subtotal,
		ShippingFee:   po.ShippingFee,
		Discount:      po.Discount,
		TotalAmount:   po.TotalAmount,
		Memo:          po.Memo,
		Status:        etorder.OrderStatus(po.Status),
		PaymentStatus: etorder.PaymentStatus(po.PaymentStatus),
		CreatedAt:     po.CreatedAt,
		UpdatedAt:     po.UpdatedAt,
		PaidAt:        po.PaidAt,
		RefundedAt:    po.RefundedAt,
		CancelledAt:   po.CancelledAt,
	}
	if po.PartnerID != nil {
		order.PartnerID = *po.PartnerID
	}

	if len(po.ShippingAddress) > 0 && string(po.ShippingAddress) != "null" {
		var address etorder.Address
		if err := json.Unmarshal(po.ShippingAddress, &address); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address failed: %w", err)
		}
		order.ShippingAddress = &address
	}

	return order, nil
}

// ToDomainModel 供只读查询（结算）复用的转换函数
func ToDomainModel(po *entity.Order) (*etorder.Order, error) {
	return toDomainModel(po)
}
