package request

import (
	"time"

	"github.com/shopspring/decimal"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/entity/etprimitive"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/domains/services/svorder"
	"oip/checkout/internal/app/domains/services/svsettlement"
)

// ToPerformer 转换操作者，未填写的字段由服务层补默认值
func (a Actor) ToPerformer() etorderlog.Performer {
	return etorderlog.Performer{
		ID:   a.PerformedBy,
		Type: etorderlog.PerformerType(a.PerformerType),
	}
}

// ToInput 将 Request DTO 转换为服务层参数
func (r *CreateOrderRequest) ToInput(caller string) *svorder.CreateOrderInput {
	items := make([]*etorder.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, &etorder.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   valueOrZero(item.UnitPrice),
		})
	}

	return &svorder.CreateOrderInput{
		OrderType:       r.OrderType,
		BuyerID:         r.BuyerID,
		SellerID:        r.SellerID,
		SupplierID:      r.SupplierID,
		PartnerID:       r.PartnerID,
		Items:           items,
		ShippingFee:     valueOrZero(r.ShippingFee),
		Discount:        valueOrZero(r.Discount),
		ShippingAddress: toAddressEntity(r.ShippingAddress),
		Memo:            r.Memo,
		Caller:          caller,
		Performer:       r.Actor.ToPerformer(),
	}
}

func toAddressEntity(dto *Address) *etorder.Address {
	if dto == nil {
		return nil
	}
	return &etorder.Address{
		RecipientName: dto.RecipientName,
		Phone:         dto.Phone,
		ZipCode:       dto.ZipCode,
		Address1:      dto.Address1,
		Address2:      dto.Address2,
	}
}

// ToInput 转换发起支付参数
func (r *InitiatePaymentRequest) ToInput() *svorder.InitiatePaymentInput {
	return &svorder.InitiatePaymentInput{
		PGProvider: r.PGProvider,
		Performer:  r.Actor.ToPerformer(),
	}
}

// ToInput 转换支付成功参数
func (r *CompletePaymentRequest) ToInput() *svorder.CompletePaymentInput {
	in := &svorder.CompletePaymentInput{
		PaymentKey: r.PaymentKey,
		PGProvider: r.PGProvider,
		Method:     r.Method,
		Amount:     r.Amount,
		Performer:  r.Actor.ToPerformer(),
	}
	if r.ApprovedAt != nil {
		in.ApprovedAt = r.ApprovedAt.UTC()
	}
	if r.Card != nil {
		in.CardMetadata = &etpayment.CardMetadata{
			Company:           r.Card.Company,
			Number:            r.Card.Number,
			InstallmentMonths: r.Card.InstallmentMonths,
			ApproveNo:         r.Card.ApproveNo,
			CardType:          r.Card.CardType,
		}
	}
	return in
}

// ToInput 转换支付失败参数
func (r *FailPaymentRequest) ToInput() *svorder.FailPaymentInput {
	return &svorder.FailPaymentInput{PGProvider: r.PGProvider, Reason: r.Reason, Performer: r.Actor.ToPerformer()}
}

// ToInput 转换退款参数
func (r *RefundRequest) ToInput() *svorder.RefundInput {
	return &svorder.RefundInput{Amount: r.Amount, Reason: r.Reason, Performer: r.Actor.ToPerformer()}
}

// ToInput 转换取消参数
func (r *CancelRequest) ToInput() *svorder.CancelInput {
	return &svorder.CancelInput{Reason: r.Reason, Performer: r.Actor.ToPerformer()}
}

// ToPagination 转换分页参数
func (q PageQuery) ToPagination() etprimitive.Pagination {
	return etprimitive.Pagination{Page: q.Page, Limit: q.Limit}.Normalize()
}

// ToFilter 转换订单列表过滤条件
func (q *ListOrdersQuery) ToFilter() rporder.ListFilter {
	return rporder.ListFilter{
		OrderType:     etorder.OrderType(q.OrderType).Normalize(),
		Status:        etorder.OrderStatus(q.Status),
		PaymentStatus: etorder.PaymentStatus(q.PaymentStatus),
		BuyerID:       q.BuyerID,
		SellerID:      q.SellerID,
		SupplierID:    q.SupplierID,
		PartnerID:     q.PartnerID,
		CreatedFrom:   utcOrNil(q.CreatedFrom),
		CreatedTo:     utcOrNil(q.CreatedTo),
	}
}

// ToFilter 转换结算过滤条件
func (q *SettlementQuery) ToFilter() svsettlement.Filter {
	return svsettlement.Filter{
		OrderType:  etorder.OrderType(q.OrderType),
		SupplierID: q.SupplierID,
		PartnerID:  q.PartnerID,
	}
}

// ToSummaryParams 转换结算汇总参数
func (q *SettlementQuery) ToSummaryParams() *svsettlement.SummaryParams {
	return &svsettlement.SummaryParams{
		PeriodStart: q.PeriodStart,
		PeriodEnd:   q.PeriodEnd,
		Filter:      q.ToFilter(),
		GroupBy:     svsettlement.GroupBy(q.GroupBy),
	}
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
