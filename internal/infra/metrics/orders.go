package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		orderTransitionsTotal,
		ordersExpiredTotal,
	)
}

var (
	orderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vip_order_transitions_total",
			Help: "Order lifecycle transitions by target status.",
		},
		[]string{"to"}, // 'pending', 'paid', 'cancelled'
	)

	ordersExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_orders_expired_total",
			Help: "Pending orders transitioned to expired by the sweeper.",
		},
	)
)

func IncOrderTransition(to string) {
	orderTransitionsTotal.WithLabelValues(to).Inc()
}

func IncOrdersExpired(count int) {
	ordersExpiredTotal.Add(float64(count))
}
