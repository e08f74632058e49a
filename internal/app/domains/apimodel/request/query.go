package request

import "time"

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	OrderType     string     `form:"order_type"`
	Status        string     `form:"status" binding:"omitempty,oneof=CREATED PAID CANCELLED REFUNDED"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=PENDING PAID REFUNDED"`
	BuyerID       string     `form:"buyer_id"`
	SellerID      string     `form:"seller_id"`
	SupplierID    string     `form:"supplier_id"`
	PartnerID     string     `form:"partner_id"`
	CreatedFrom   *time.Time `form:"created_from"`
	CreatedTo     *time.Time `form:"created_to"`
	PageQuery
}

// PageQuery 分页参数
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// SettlementQuery 结算查询参数（RFC3339 时间）
type SettlementQuery struct {
	PeriodStart time.Time `form:"period_start"`
	PeriodEnd   time.Time `form:"period_end"`
	OrderType   string    `form:"order_type"`
	SupplierID  string    `form:"supplier_id"`
	PartnerID   string    `form:"partner_id"`
	GroupBy     string    `form:"group_by"`
}
