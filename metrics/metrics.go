// Package metrics exposes painter activity as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	col, err := metrics.NewCollector(reg)
//	p, err := inkpad.New(desc, inkpad.WithObserver(col))
package metrics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/gogpu/inkpad"
)

const namespace = "inkpad"

// Collector implements inkpad.Observer by updating Prometheus metrics.
// Observer callbacks run on the painting goroutine; the metrics
// themselves are safe to scrape concurrently.
type Collector struct {
	stampsQueued  prometheus.Counter
	batches       *prometheus.CounterVec
	batchStamps   prometheus.Histogram
	batchSeconds  *prometheus.HistogramVec
	flushes       prometheus.Counter
	flushPixels   prometheus.Histogram
	downgrades    *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
	undoDepth     prometheus.Gauge
	undoSteps     prometheus.Counter
	renderPathSet *prometheus.GaugeVec
}

var _ inkpad.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		stampsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stamps_queued_total",
			Help:      "Stamps queued for compositing.",
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Stamp batches rendered, by render path and whether the batch filled up mid-stroke.",
		}, []string{"path", "implicit"}),
		batchStamps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_stamps",
			Help:      "Stamps per rendered batch.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		batchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_render_seconds",
			Help:      "Time spent rendering one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}, []string{"path"}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Flushes that rendered at least one batch.",
		}),
		flushPixels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_region_pixels",
			Help:      "Area of the dirty region cleared by a flush.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		}),
		downgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_downgrades_total",
			Help:      "Permanent switches from the compute path to a fragment path.",
		}, []string{"from", "to"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Undo snapshots pushed, by reason.",
		}, []string{"reason"}),
		undoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "undo_depth",
			Help:      "Snapshots currently held in the undo history.",
		}),
		undoSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_steps_total",
			Help:      "Snapshots popped by undo.",
		}),
		renderPathSet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "render_path",
			Help:      "1 for the render path of the most recent batch.",
		}, []string{"path"}),
	}

	for _, col := range []prometheus.Collector{
		c.stampsQueued, c.batches, c.batchStamps, c.batchSeconds,
		c.flushes, c.flushPixels, c.downgrades, c.snapshots,
		c.undoDepth, c.undoSteps, c.renderPathSet,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

// StampsQueued implements inkpad.Observer.
func (c *Collector) StampsQueued(n int) { c.stampsQueued.Add(float64(n)) }

// BatchRendered implements inkpad.Observer.
func (c *Collector) BatchRendered(info inkpad.BatchInfo) {
	path := info.Path.String()
	c.batches.WithLabelValues(path, strconv.FormatBool(info.Implicit)).Inc()
	c.batchStamps.Observe(float64(info.Stamps))
	c.batchSeconds.WithLabelValues(path).Observe(info.Duration.Seconds())
	c.setPath(info.Path)
}

func (c *Collector) setPath(p inkpad.RenderPath) {
	for q := inkpad.PathFragmentFull; q <= inkpad.PathCompute; q++ {
		v := 0.0
		if q == p {
			v = 1
		}
		c.renderPathSet.WithLabelValues(q.String()).Set(v)
	}
}

// Flushed implements inkpad.Observer.
func (c *Collector) Flushed(info inkpad.FlushInfo) {
	c.flushes.Inc()
	if info.HadRegion {
		c.flushPixels.Observe(float64(info.Region.Dx() * info.Region.Dy()))
	}
}

// PathDowngraded implements inkpad.Observer.
func (c *Collector) PathDowngraded(from, to inkpad.RenderPath, _ error) {
	c.downgrades.WithLabelValues(from.String(), to.String()).Inc()
	c.setPath(to)
}

// SnapshotPushed implements inkpad.Observer.
func (c *Collector) SnapshotPushed(reason inkpad.SnapshotReason, depth int) {
	c.snapshots.WithLabelValues(reason.String()).Inc()
	c.undoDepth.Set(float64(depth))
}

// Undone implements inkpad.Observer.
func (c *Collector) Undone(steps, depth int) {
	c.undoSteps.Add(float64(steps))
	c.undoDepth.Set(float64(depth))
}

// WriteText gathers g and writes it in the Prometheus text exposition
// format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write: %w", err)
		}
	}
	return nil
}
