package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		redemptionsTotal,
		grantsTotal,
		entitlementChecksTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Invitation code redemption attempts by result.",
		},
		[]string{"result"}, // 'ok', 'not_found', 'expired', 'exhausted', 'already_used', 'error'
	)

	grantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vip_grants_total",
			Help: "Entitlement grants applied, by source and plan.",
		},
		[]string{"source", "plan"}, // source: 'code' | 'order'
	)

	entitlementChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_checks_total",
			Help: "IsEntitled lookups by outcome.",
		},
		[]string{"entitled"},
	)
)

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(result).Inc()
}

func IncGrant(source, plan string) {
	grantsTotal.WithLabelValues(source, plan).Inc()
}

func IncEntitlementCheck(entitled bool) {
	v := "false"
	if entitled {
		v = "true"
	}
	entitlementChecksTotal.WithLabelValues(v).Inc()
}
