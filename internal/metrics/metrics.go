// Package metrics records batch outcomes in a private Prometheus registry
// and writes them as a node_exporter textfile.
//
// A nil *Recorder is valid and records nothing, so callers need no
// enabled/disabled branches.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mediaconv"

// Recorder holds the metrics for one run.
type Recorder struct {
	reg      *prometheus.Registry
	mode     string
	files    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
	lastRun  prometheus.Gauge
	runInfo  *prometheus.GaugeVec
}

// NewRecorder creates a Recorder whose file counters carry mode as a
// label.
func NewRecorder(mode string) *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg:  reg,
		mode: mode,
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files processed, by conversion mode and outcome.",
		}, []string{"mode", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Wall time spent on one file, by outcome.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"status"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Bytes read from inputs and written to outputs of successful conversions.",
		}, []string{"direction"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch finished.",
		}),
		runInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_info",
			Help:      "Always 1; labels identify the last batch.",
		}, []string{"run_id", "mode"}),
	}
}

// Observe counts one file with the given outcome status.
func (r *Recorder) Observe(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(r.mode, status).Inc()
	r.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// AddBytes adds the input and output sizes of a successful conversion.
func (r *Recorder) AddBytes(in, out int64) {
	if r == nil {
		return
	}
	r.bytes.WithLabelValues("in").Add(float64(in))
	r.bytes.WithLabelValues("out").Add(float64(out))
}

// Finish stamps the run identity and completion time.
func (r *Recorder) Finish(runID string, at time.Time) {
	if r == nil {
		return
	}
	r.runInfo.WithLabelValues(runID, r.mode).Set(1)
	r.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes every metric to path in the text exposition
// format. The parent directory is created when missing.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
