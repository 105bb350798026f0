// Package metrics exports serializer activity as Prometheus metrics.
package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oy3o/objcodec"
)

const (
	namespace = "objcodec"

	typeLabel  = "type"
	codecLabel = "codec"
	modeLabel  = "mode"
	opLabel    = "op"
	errLabel   = "error"
)

// sizeBuckets is in bytes: 16 B to 1 MiB.
var sizeBuckets = prometheus.ExponentialBuckets(16, 4, 9)

// Collector implements objcodec.Observer.
type Collector struct {
	written      *prometheus.CounterVec
	read         *prometheus.CounterVec
	writtenBytes *prometheus.HistogramVec
	readBytes    *prometheus.HistogramVec
	failures     *prometheus.CounterVec
}

var _ objcodec.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with r.
// A nil r uses prometheus.DefaultRegisterer.
func NewCollector(r prometheus.Registerer) *Collector {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	c := &Collector{
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_written_total",
			Help:      "Top-level objects written, by type, codec and tagging mode.",
		}, []string{typeLabel, codecLabel, modeLabel}),
		read: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_read_total",
			Help:      "Top-level objects read, by type, codec and tagging mode.",
		}, []string{typeLabel, codecLabel, modeLabel}),
		writtenBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "object_written_bytes",
			Help:      "Encoded size of top-level objects written.",
			Buckets:   sizeBuckets,
		}, []string{typeLabel}),
		readBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "object_read_bytes",
			Help:      "Encoded size of top-level objects read.",
			Buckets:   sizeBuckets,
		}, []string{typeLabel}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed reads and writes, by operation and error class.",
		}, []string{opLabel, errLabel}),
	}
	r.MustRegister(c.written, c.read, c.writtenBytes, c.readBytes, c.failures)
	return c
}

func mode(tagged bool) string {
	if tagged {
		return "tagged"
	}
	return "untagged"
}

func (c *Collector) ObjectWritten(reg *objcodec.Registration, tagged bool, n int64) {
	name := reg.Type.String()
	c.written.WithLabelValues(name, reg.Codec.Kind().String(), mode(tagged)).Inc()
	c.writtenBytes.WithLabelValues(name).Observe(float64(n))
}

func (c *Collector) ObjectRead(reg *objcodec.Registration, tagged bool, n int64) {
	name := reg.Type.String()
	c.read.WithLabelValues(name, reg.Codec.Kind().String(), mode(tagged)).Inc()
	c.readBytes.WithLabelValues(name).Observe(float64(n))
}

func (c *Collector) Failed(op string, err error) {
	c.failures.WithLabelValues(op, ErrorClass(err)).Inc()
}

// ErrorClass maps an error to a low-cardinality label value.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, objcodec.ErrUnderflow):
		return "underflow"
	case errors.Is(err, objcodec.ErrMalformedData):
		return "malformed"
	case errors.Is(err, objcodec.ErrUnregisteredType):
		return "unregistered_type"
	case errors.Is(err, objcodec.ErrUnknownTypeID):
		return "unknown_type_id"
	case errors.Is(err, objcodec.ErrIO):
		return "io"
	case errors.Is(err, objcodec.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, objcodec.ErrNilValue):
		return "nil_value"
	case errors.Is(err, objcodec.ErrDepthExceeded):
		return "depth_exceeded"
	case errors.Is(err, objcodec.ErrUnsupportedType):
		return "unsupported_type"
	}
	return "other"
}
