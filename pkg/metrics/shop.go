package metrics

import "github.com/prometheus/client_golang/prometheus"

// ShopMetrics counts business events emitted by the order and catalog services.
type ShopMetrics struct {
	ordersCreated  prometheus.Counter
	ordersCanceled prometheus.Counter
	orderStatus    *prometheus.CounterVec
	reviewsAdded   prometheus.Counter
}

// NewShopMetrics registers the shop counters on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	m := &ShopMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders placed successfully.",
		}),
		ordersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_canceled_total",
			Help: "Orders canceled by their owner.",
		}),
		orderStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Admin status updates by target status.",
		}, []string{"status"}),
		reviewsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_reviews_added_total",
			Help: "Reviews appended to catalog items.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.ordersCanceled, m.orderStatus, m.reviewsAdded)
	return m
}

func (m *ShopMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *ShopMetrics) IncOrderCanceled() {
	if m == nil || m.ordersCanceled == nil {
		return
	}
	m.ordersCanceled.Inc()
}

func (m *ShopMetrics) IncOrderStatus(status string) {
	if m == nil || m.orderStatus == nil {
		return
	}
	m.orderStatus.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *ShopMetrics) IncReviewAdded() {
	if m == nil || m.reviewsAdded == nil {
		return
	}
	m.reviewsAdded.Inc()
}
