package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// Collector holds the engine's Prometheus metrics and feeds them from
// lifecycle events.
type Collector struct {
	turns        *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	decisions    *prometheus.CounterVec
	errors       *prometheus.CounterVec
	completeness prometheus.Histogram

	mu      sync.Mutex
	entered map[string]time.Time
}

// NewCollector creates the metric families and registers them on reg.
// A nil reg registers on the default registry. Registering two collectors
// on the same registry panics, same as any duplicate registration.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cairn_turns_total",
				Help: "Total number of responder invocations",
			},
			[]string{"responder"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "cairn_node_duration_seconds",
				Help: "Time spent inside each workflow graph node",
			},
			[]string{"node"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cairn_dispatch_decisions_total",
				Help: "Dispatch decisions by target",
			},
			[]string{"target"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cairn_errors_total",
				Help: "Turn errors by kind",
			},
			[]string{"kind"},
		),
		completeness: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cairn_completeness_percent",
				Help:    "Session completeness when a turn ends",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		entered: make(map[string]time.Time),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(c.turns, c.nodeDuration, c.decisions, c.errors, c.completeness)
	return c
}

// Hooks returns lifecycle hooks that feed the metrics. Pass them to the
// engine via WithLifecycleHooks; callers that also want logging hooks can
// compose both in their own LifecycleHooks.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter:       c.onNodeEnter,
		OnNodeLeave:       c.onNodeLeave,
		OnResponderReturn: c.onResponderReturn,
	}
}

func (c *Collector) onNodeEnter(ctx context.Context, e *domain.NodeEvent) {
	c.mu.Lock()
	c.entered[e.SessionID+"/"+e.Node] = e.Timestamp
	c.mu.Unlock()
}

func (c *Collector) onNodeLeave(ctx context.Context, e *domain.NodeEvent) {
	key := e.SessionID + "/" + e.Node
	c.mu.Lock()
	start, ok := c.entered[key]
	delete(c.entered, key)
	c.mu.Unlock()

	if ok {
		c.nodeDuration.WithLabelValues(e.Node).Observe(e.Timestamp.Sub(start).Seconds())
	}
	if e.Node == domain.NodeDispatch && e.Target != "" {
		c.decisions.WithLabelValues(e.Target).Inc()
	}
	if e.Node == domain.NodeEnd {
		c.completeness.Observe(e.Completeness)
	}
}

func (c *Collector) onResponderReturn(ctx context.Context, e *domain.ResponderEvent) {
	c.turns.WithLabelValues(e.Responder).Inc()
	if e.IsError {
		c.errors.WithLabelValues(string(domain.ErrorResponderFailure)).Inc()
	}
}
