package prometheus

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/goliatone/go-accounts/core"
)

// Recorder exports core metrics as prometheus vectors. Each metric name gets
// one vector, created on first use; its label names are the tag keys seen on
// that first call. Later calls fill missing labels with "" and drop extras.
type Recorder struct {
	registerer prom.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]*prom.CounterVec
	histograms map[string]*prom.HistogramVec
	labels     map[string][]string
}

type Option func(*Recorder)

func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		r.namespace = sanitizeName(namespace)
	}
}

func WithBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

// NewRecorder registers on registerer, or on prom.DefaultRegisterer when nil.
func NewRecorder(registerer prom.Registerer, opts ...Option) *Recorder {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}
	r := &Recorder{
		registerer: registerer,
		buckets:    []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000},
		counters:   map[string]*prom.CounterVec{},
		histograms: map[string]*prom.HistogramVec{},
		labels:     map[string][]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	vec, labels := r.counter(name, tags)
	if vec == nil {
		return
	}
	vec.WithLabelValues(labelValues(labels, tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	vec, labels := r.histogram(name, tags)
	if vec == nil {
		return
	}
	vec.WithLabelValues(labelValues(labels, tags)...).Observe(value)
}

func (r *Recorder) counter(name string, tags map[string]string) (*prom.CounterVec, []string) {
	metric := r.metricName(name)
	if metric == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.counters[metric]; ok {
		return vec, r.labels[metric]
	}
	labels := labelNames(tags)
	vec := prom.NewCounterVec(prom.CounterOpts{
		Name: metric,
		Help: "Count of " + strings.TrimSpace(name) + " events.",
	}, labels)
	if err := r.registerer.Register(vec); err != nil {
		var already prom.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, nil
		}
		existing, ok := already.ExistingCollector.(*prom.CounterVec)
		if !ok {
			return nil, nil
		}
		vec = existing
	}
	r.counters[metric] = vec
	r.labels[metric] = labels
	return vec, labels
}

func (r *Recorder) histogram(name string, tags map[string]string) (*prom.HistogramVec, []string) {
	metric := r.metricName(name)
	if metric == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.histograms[metric]; ok {
		return vec, r.labels[metric]
	}
	labels := labelNames(tags)
	vec := prom.NewHistogramVec(prom.HistogramOpts{
		Name:    metric,
		Help:    "Distribution of " + strings.TrimSpace(name) + ".",
		Buckets: r.buckets,
	}, labels)
	if err := r.registerer.Register(vec); err != nil {
		var already prom.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, nil
		}
		existing, ok := already.ExistingCollector.(*prom.HistogramVec)
		if !ok {
			return nil, nil
		}
		vec = existing
	}
	r.histograms[metric] = vec
	r.labels[metric] = labels
	return vec, labels
}

func (r *Recorder) metricName(name string) string {
	metric := sanitizeName(name)
	if metric == "" {
		return ""
	}
	if r.namespace != "" {
		return r.namespace + "_" + metric
	}
	return metric
}

func labelNames(tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	for key := range tags {
		if label := sanitizeName(key); label != "" {
			names = append(names, label)
		}
	}
	sort.Strings(names)
	return names
}

func labelValues(labels []string, tags map[string]string) []string {
	byLabel := make(map[string]string, len(tags))
	for key, value := range tags {
		byLabel[sanitizeName(key)] = value
	}
	values := make([]string, len(labels))
	for i, label := range labels {
		values[i] = byLabel[label]
	}
	return values
}

// sanitizeName maps dots, dashes and spaces to underscores and drops any
// other character prometheus rejects.
func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '.', r == '-', r == ' ', r == ':':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

var _ core.MetricsRecorder = (*Recorder)(nil)
