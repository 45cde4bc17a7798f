// Package metrics exposes Prometheus instruments for the billing jobs.
package metrics

// Config carries the constant labels applied to every instrument.
type Config struct {
	ServiceName string
	Environment string
}
