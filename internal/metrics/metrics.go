// Package metrics records the outcome of a reconciliation run as Prometheus
// series. A run is short lived, so the registry is written to a node exporter
// textfile at the end instead of being scraped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const namespace = "cfn_diff"

type Recorder struct {
	registry *prometheus.Registry

	// DriftDetections counts finished drift detections by stack drift status.
	DriftDetections *prometheus.CounterVec
	// DriftAttempts observes how many polls a detection needed.
	DriftAttempts prometheus.Histogram
	// Reports counts published reports by kind.
	Reports *prometheus.CounterVec
	// Rows counts report rows by change classification.
	Rows *prometheus.CounterVec
	// DriftedStacks counts reports carrying a drift banner.
	DriftedStacks prometheus.Counter
	// PublishFailures counts sink failures by sink type.
	PublishFailures *prometheus.CounterVec
	// RunDuration is the wall time of the last run in seconds.
	RunDuration prometheus.Gauge
	// LastRunSuccess is the Unix time of the last run that finished without error.
	LastRunSuccess prometheus.Gauge
}

var _ ports.Metrics = (*Recorder)(nil)

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		DriftDetections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drift_detections_total",
				Help:      "Total number of stack drift detections by resulting status",
			},
			[]string{"status"},
		),
		DriftAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "drift_detection_attempts",
				Help:      "Number of status polls per drift detection",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 10},
			},
		),
		Reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_total",
				Help:      "Total number of assembled stack reports by kind",
			},
			[]string{"kind"},
		),
		Rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_rows_total",
				Help:      "Total number of report rows by change classification",
			},
			[]string{"classification"},
		),
		DriftedStacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drifted_stacks_total",
				Help:      "Total number of stack reports that detected drift",
			},
		),
		PublishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_failures_total",
				Help:      "Total number of failed report deliveries by sink",
			},
			[]string{"sink"},
		),
		RunDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of the last run in seconds",
			},
		),
		LastRunSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_success_timestamp_seconds",
				Help:      "Unix timestamp of the last successful run",
			},
		),
	}
	r.registry.MustRegister(
		r.DriftDetections,
		r.DriftAttempts,
		r.Reports,
		r.Rows,
		r.DriftedStacks,
		r.PublishFailures,
		r.RunDuration,
		r.LastRunSuccess,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveDriftDetection(status domain.StackDriftStatus) {
	r.DriftDetections.WithLabelValues(string(status)).Inc()
}

func (r *Recorder) ObserveDriftAttempts(attempts int) {
	r.DriftAttempts.Observe(float64(attempts))
}

func (r *Recorder) ObserveReport(report *domain.Report) {
	if report == nil {
		return
	}
	r.Reports.WithLabelValues(string(report.Kind)).Inc()
	for _, row := range report.Rows {
		r.Rows.WithLabelValues(string(row.Classification)).Inc()
	}
	if report.Banner != nil {
		r.DriftedStacks.Inc()
	}
}

func (r *Recorder) ObservePublishFailure(sink string) {
	r.PublishFailures.WithLabelValues(sink).Inc()
}

// ObserveRun records the duration of a run and, on success, its end time.
func (r *Recorder) ObserveRun(started time.Time, err error) {
	end := time.Now()
	r.RunDuration.Set(end.Sub(started).Seconds())
	if err == nil {
		r.LastRunSuccess.Set(float64(end.Unix()))
	}
}

// WriteTextfile writes every series in the Prometheus text format. The file
// is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return idderrors.Wrap(err, idderrors.CodePublishError, "failed to write metrics textfile "+path)
	}
	return nil
}
