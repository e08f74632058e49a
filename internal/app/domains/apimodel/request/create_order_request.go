package request

import "github.com/shopspring/decimal"

// CreateOrderRequest 创建订单请求
// 行小计与订单总额由服务端计算，请求中不接收
type CreateOrderRequest struct {
	OrderType       string           `json:"order_type" example:"GENERIC"`
	BuyerID         string           `json:"buyer_id" binding:"required" example:"buyer-1"`
	SellerID        string           `json:"seller_id" binding:"required" example:"seller-1"`
	SupplierID      string           `json:"supplier_id" binding:"required" example:"supplier-1"`
	PartnerID       string           `json:"partner_id" example:"partner-1"`
	Items           []*OrderItem     `json:"items" binding:"required,min=1,dive,required"`
	ShippingFee     *decimal.Decimal `json:"shipping_fee" swaggertype:"string" example:"3000"`
	Discount        *decimal.Decimal `json:"discount" swaggertype:"string" example:"0"`
	ShippingAddress *Address         `json:"shipping_address"`
	Memo            string           `json:"memo" binding:"max=500"`
	Actor
}

// OrderItem 订单行
type OrderItem struct {
	ProductID   string           `json:"product_id" binding:"required" example:"SKU-001"`
	ProductName string           `json:"product_name" example:"T-Shirt"`
	Quantity    int              `json:"quantity" binding:"required,min=1" example:"2"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"required" swaggertype:"string" example:"19900"`
}

// Address 收货地址
type Address struct {
	RecipientName string `json:"recipient_name" binding:"required" example:"John Doe"`
	Phone         string `json:"phone" binding:"required" example:"010-1234-5678"`
	ZipCode       string `json:"zip_code" binding:"required" example:"06236"`
	Address1      string `json:"address1" binding:"required" example:"123 Teheran-ro"`
	Address2      string `json:"address2" example:"Suite 100"`
}

// Actor 操作者信息，未填写时按操作类型使用默认操作者
type Actor struct {
	PerformedBy   string `json:"performed_by" example:"admin-7"`
	PerformerType string `json:"performer_type" binding:"omitempty,oneof=BUYER SELLER ADMIN SYSTEM GATEWAY" example:"ADMIN"`
}
