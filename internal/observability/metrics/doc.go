// Package metrics declares the Prometheus collectors of the API and the
// worker and the helpers that record into them. Collectors register with the
// default registry and are served on /metrics.
//
//	metrics.RecordLogin(ok)
//	metrics.RecordTotals(users, articles, notes, favorites)
package metrics
