package metric

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pipelined.dev/engine/log"
	"pipelined.dev/engine/mutable"
)

const namespace = "engine"

// DefaultInterval is the default polling interval of the reporter.
const DefaultInterval = 100 * time.Millisecond

// Reporter carries measurements from the real-time thread to Prometheus.
// The real-time side calls only Measure, which doesn't block or allocate.
// Everything else runs on a regular goroutine.
type Reporter struct {
	load     mutable.Slot[float64]
	blocks   atomic.Uint64
	overruns atomic.Uint64

	// owned by the polling goroutine
	lastLoad     float64
	lastBlocks   uint64
	lastOverruns uint64
	watched      []watched

	loadGauge     prometheus.Gauge
	blocksCounter prometheus.Counter
	overrunsTotal prometheus.Counter
	values        *prometheus.GaugeVec

	interval time.Duration
	log      log.Logger
}

type watched struct {
	slot  *mutable.Slot[float64]
	gauge prometheus.Gauge
}

// Option configures reporter.
type Option func(*Reporter)

// WithInterval sets polling interval of Run. Non-positive interval keeps
// DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets logger for overrun warnings.
func WithLogger(l log.Logger) Option {
	return func(r *Reporter) {
		r.log = l
	}
}

// NewReporter creates reporter and registers its metrics.
func NewReporter(reg prometheus.Registerer, options ...Option) *Reporter {
	factory := promauto.With(reg)
	r := &Reporter{
		loadGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_load",
			Help:      "CPU time of the last block as fraction of its deadline.",
		}),
		blocksCounter: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Number of processed blocks.",
		}),
		overrunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overruns_total",
			Help:      "Number of blocks that took longer than their deadline.",
		}),
		values: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "value",
			Help:      "Latest value published by a processor.",
		}, []string{"name"}),
		interval: DefaultInterval,
		log:      log.Silent(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Measure records the load of one block. Called from the real-time thread.
func (r *Reporter) Measure(load float64) {
	r.load.Push(load)
	r.blocks.Add(1)
	if load > 1 {
		r.overruns.Add(1)
	}
}

// Watch makes the reporter the consumer of the slot and exports its values
// under the name. It must be called before Run.
func (r *Reporter) Watch(name string, s *mutable.Slot[float64]) {
	r.watched = append(r.watched, watched{
		slot:  s,
		gauge: r.values.WithLabelValues(name),
	})
}

// Poll pulls pending measurements and updates metrics.
func (r *Reporter) Poll() {
	var v float64
	if r.load.Pull(&v) {
		r.lastLoad = v
		r.loadGauge.Set(v)
	}
	if blocks := r.blocks.Load(); blocks != r.lastBlocks {
		r.blocksCounter.Add(float64(blocks - r.lastBlocks))
		r.lastBlocks = blocks
	}
	if overruns := r.overruns.Load(); overruns != r.lastOverruns {
		r.overrunsTotal.Add(float64(overruns - r.lastOverruns))
		r.log.Warn(fmt.Sprintf("%d blocks missed deadline, last load %.2f", overruns-r.lastOverruns, r.lastLoad))
		r.lastOverruns = overruns
	}
	for _, w := range r.watched {
		if w.slot.Pull(&v) {
			w.gauge.Set(v)
		}
	}
}

// Load returns the last polled load.
func (r *Reporter) Load() float64 {
	return r.lastLoad
}

// Run polls until the context is done.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Poll()
		case <-ctx.Done():
			r.Poll()
			return nil
		}
	}
}
