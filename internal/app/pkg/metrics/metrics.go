package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus 指标：订单/支付生命周期
var (
	OrdersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_orders_created_total",
			Help: "Total number of orders created",
		},
		[]string{"order_type"},
	)

	GuardRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_guard_rejections_total",
			Help: "Total number of order creations rejected by the order type guard",
		},
		[]string{"order_type"},
	)

	GuardDefaultTypeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_guard_default_type_total",
			Help: "Total number of orders created without an explicit order type",
		},
	)

	PaymentsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_payments_completed_total",
			Help: "Total number of payments marked as successful",
		},
	)

	DuplicatePaymentCallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_duplicate_payment_callbacks_total",
			Help: "Total number of payment completions deduplicated by payment key",
		},
	)

	PaymentsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_payments_failed_total",
			Help: "Total number of payments marked as failed",
		},
	)

	RefundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_refunds_total",
			Help: "Total number of refunds",
		},
		[]string{"kind"},
	)

	OrderNumberCollisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_order_number_collisions_total",
			Help: "Total number of order number collisions retried on insert",
		},
	)

	MutationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_mutation_duration_seconds",
			Help:    "Duration of order lifecycle mutations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CallbackMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_callback_messages_total",
			Help: "Total number of gateway callback messages consumed",
		},
		[]string{"result"},
	)
)

// Register 注册所有 Prometheus 指标
func Register() {
	prometheus.MustRegister(OrdersCreatedTotal)
	prometheus.MustRegister(GuardRejectionsTotal)
	prometheus.MustRegister(GuardDefaultTypeTotal)
	prometheus.MustRegister(PaymentsCompletedTotal)
	prometheus.MustRegister(DuplicatePaymentCallbacksTotal)
	prometheus.MustRegister(PaymentsFailedTotal)
	prometheus.MustRegister(RefundsTotal)
	prometheus.MustRegister(OrderNumberCollisionsTotal)
	prometheus.MustRegister(MutationDuration)
	prometheus.MustRegister(CallbackMessagesTotal)
}
