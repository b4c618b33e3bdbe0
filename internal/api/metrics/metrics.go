// Package metrics defines and registers all custom Prometheus metrics for the
// identity service. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "failure", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenResolutionsTotal counts per-request authorization context resolutions.
// Label:
//   - result: "ok" or "rejected"
var TokenResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_resolutions_total",
		Help:      "Total number of bearer-token context resolutions, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts authorization denials after a successful token
// resolution.
// Label:
//   - route: the route path the denial happened on
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of forbidden responses, by route.",
	},
	[]string{"route"},
)
