package response

import (
	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/domains/modules/mdnotify"
	"oip/checkout/internal/app/domains/services/svsettlement"
)

// FromOrderEntity 从领域对象转换为响应 DTO
func FromOrderEntity(order *etorder.Order) *OrderResponse {
	if order == nil {
		return nil
	}

	resp := &OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		OrderType:     string(order.OrderType),
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		SupplierID:    order.SupplierID,
		PartnerID:     order.PartnerID,
		Items:         make([]*OrderItem, 0, len(order.Items)),
		Subtotal:      order.Subtotal,
		ShippingFee:   order.ShippingFee,
		Discount:      order.Discount,
		TotalAmount:   order.TotalAmount,
		Memo:          order.Memo,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		PaidAt:        order.PaidAt,
		RefundedAt:    order.RefundedAt,
		CancelledAt:   order.CancelledAt,
	}

	for _, item := range order.Items {
		resp.Items = append(resp.Items, &OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	if addr := order.ShippingAddress; addr != nil {
		resp.ShippingAddress = &Address{
			RecipientName: addr.RecipientName,
			Phone:         addr.Phone,
			ZipCode:       addr.ZipCode,
			Address1:      addr.Address1,
			Address2:      addr.Address2,
		}
	}

	return resp
}

// FromOrderEntities 批量转换
func FromOrderEntities(orders []*etorder.Order) []*OrderResponse {
	items := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, FromOrderEntity(order))
	}
	return items
}

// FromWarning 转换护栏提示
func FromWarning(w *mdguard.Warning) *Warning {
	if w == nil {
		return nil
	}
	return &Warning{Code: w.Code, Message: w.Message}
}

// FromPaymentEntity 转换支付记录
func FromPaymentEntity(p *etpayment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}

	resp := &PaymentResponse{
		ID:             p.ID,
		OrderID:        p.OrderID,
		PGProvider:     p.PGProvider,
		Amount:         p.Amount,
		Status:         string(p.Status),
		PaymentKey:     p.PaymentKey,
		Method:         p.Method,
		RefundedAmount: p.RefundedAmount,
		RefundReason:   p.RefundReason,
		FailureReason:  p.FailureReason,
		ApprovedAt:     p.ApprovedAt,
		FailedAt:       p.FailedAt,
		RefundedAt:     p.RefundedAt,
		CreatedAt:      p.CreatedAt,
	}
	if card := p.CardMetadata; card != nil {
		resp.Card = &Card{
			Company:           card.Company,
			Number:            card.Number,
			InstallmentMonths: card.InstallmentMonths,
			ApproveNo:         card.ApproveNo,
			CardType:          card.CardType,
		}
	}
	return resp
}

// FromPaymentEntities 批量转换
func FromPaymentEntities(payments []*etpayment.Payment) []*PaymentResponse {
	items := make([]*PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, FromPaymentEntity(p))
	}
	return items
}

// FromOrderLogs 转换审计日志
func FromOrderLogs(logs []*etorderlog.OrderLog) []*OrderLogResponse {
	items := make([]*OrderLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, &OrderLogResponse{
			ID:             l.ID,
			Action:         string(l.Action),
			PreviousStatus: l.PreviousStatus,
			NewStatus:      l.NewStatus,
			PerformedBy:    l.PerformedBy,
			PerformerType:  string(l.PerformerType),
			Message:        l.Message,
			Metadata:       l.Metadata,
			CreatedAt:      l.CreatedAt,
		})
	}
	return items
}

// FromPaymentOutcome 转换等待结果
func FromPaymentOutcome(o *mdnotify.PaymentOutcome) *PaymentWaitResponse {
	return &PaymentWaitResponse{
		OrderID:       o.OrderID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Event:         string(o.Event),
		Reason:        o.Reason,
	}
}

// FromSettlementSummary 转换结算汇总
func FromSettlementSummary(s *svsettlement.Summary) *SettlementSummaryResponse {
	resp := &SettlementSummaryResponse{
		PeriodStart:  s.PeriodStart,
		PeriodEnd:    s.PeriodEnd,
		TotalOrders:  s.TotalOrders,
		TotalRevenue: s.TotalRevenue,
		GroupBy:      string(s.GroupBy),
	}
	for _, g := range s.ByGroup {
		resp.ByGroup = append(resp.ByGroup, &SettlementGroupItem{
			Key:          g.Key,
			TotalOrders:  g.TotalOrders,
			TotalRevenue: g.TotalRevenue,
		})
	}
	return resp
}
