package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GeneratorMetrics tracks recurring bill generation outcomes.
type GeneratorMetrics struct {
	runDuration   *prometheus.HistogramVec
	billsCreated  prometheus.Counter
	schedulesDue  prometheus.Gauge
	runsTotal     *prometheus.CounterVec
	lastRunAtUnix prometheus.Gauge
}

var (
	generatorMetricsOnce sync.Once
	generatorMetrics     *GeneratorMetrics
)

// Generator returns the process-wide generator metrics, registering them on
// first use.
func Generator() *GeneratorMetrics {
	return GeneratorWithConfig(Config{})
}

func GeneratorWithConfig(cfg Config) *GeneratorMetrics {
	generatorMetricsOnce.Do(func() {
		generatorMetrics = newGeneratorMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return generatorMetrics
}

func ResetGeneratorMetricsForTest() {
	generatorMetricsOnce = sync.Once{}
	generatorMetrics = nil
}

func newGeneratorMetrics(registerer prometheus.Registerer, cfg Config) *GeneratorMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "faktura"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "faktura_bill_generation_duration_seconds",
			Help:        "Duration of a bill generation pass.",
			Buckets:     []float64{0.05, 0.25, 1, 5, 15, 60, 300},
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)

	billsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "faktura_bills_created_total",
			Help:        "Total bills materialized by the generator.",
			ConstLabels: constLabels,
		},
	)

	schedulesDue := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "faktura_bill_schedules_due",
			Help:        "Schedules selected by the most recent generation pass.",
			ConstLabels: constLabels,
		},
	)

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "faktura_bill_generation_runs_total",
			Help:        "Total generation passes by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)

	lastRunAtUnix := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "faktura_bill_generation_last_run_timestamp_seconds",
			Help:        "Unix time of the most recent generation pass.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		runDuration,
		billsCreated,
		schedulesDue,
		runsTotal,
		lastRunAtUnix,
	)

	return &GeneratorMetrics{
		runDuration:   runDuration,
		billsCreated:  billsCreated,
		schedulesDue:  schedulesDue,
		runsTotal:     runsTotal,
		lastRunAtUnix: lastRunAtUnix,
	}
}

func (m *GeneratorMetrics) ObserveRun(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(result).Observe(duration.Seconds())
	m.runsTotal.WithLabelValues(result).Inc()
	m.lastRunAtUnix.SetToCurrentTime()
}

func (m *GeneratorMetrics) AddBillsCreated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.billsCreated.Add(float64(count))
}

func (m *GeneratorMetrics) SetSchedulesDue(count int) {
	if m == nil {
		return
	}
	m.schedulesDue.Set(float64(count))
}
