package metrics

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/sample"
)

func TestCollectorCountsTopLevelObjects(t *testing.T) {
	reg := objcodec.NewRegistry()
	require.NoError(t, sample.RegisterAll(reg))

	pr := prometheus.NewRegistry()
	c := NewCollector(pr)
	s := objcodec.New(reg, objcodec.WithObserver(c))

	album := sample.Recording{Title: "Kind of Blue", Artists: []string{"Miles Davis", "Bill Evans"}}
	data, err := s.Marshal(album)
	require.NoError(t, err)
	_, err = s.Unmarshal(data)
	require.NoError(t, err)
	_, err = objcodec.MarshalObject(s, sample.Pet{Name: "Lady"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.written.WithLabelValues("sample.Recording", "reflective", "tagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.read.WithLabelValues("sample.Recording", "reflective", "tagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.written.WithLabelValues("sample.Pet", "custom", "untagged")))
	// nested strings are not counted as objects
	assert.Equal(t, 0.0, testutil.ToFloat64(c.written.WithLabelValues("string", "builtin", "tagged")))

	assert.Equal(t, 2, testutil.CollectAndCount(c.writtenBytes))
	assert.Equal(t, 1, testutil.CollectAndCount(c.readBytes))
}

func TestCollectorCountsFailures(t *testing.T) {
	pr := prometheus.NewRegistry()
	c := NewCollector(pr)
	s := objcodec.New(nil, objcodec.WithObserver(c))

	_, err := s.Marshal(sample.Pet{})
	require.Error(t, err)
	_, err = s.Unmarshal([]byte{0x40})
	require.Error(t, err)
	_, err = s.Unmarshal(nil)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("write", "unregistered_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("read", "unknown_type_id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("read", "underflow")))
}

func TestCollectorRegistersOnce(t *testing.T) {
	pr := prometheus.NewRegistry()
	NewCollector(pr)
	assert.Panics(t, func() { NewCollector(pr) }, "duplicate registration")
}

func TestErrorClass(t *testing.T) {
	cases := map[string]error{
		"none":              nil,
		"underflow":         errors.Wrap(objcodec.ErrUnderflow, "ctx"),
		"malformed":         objcodec.ErrMalformedData,
		"unregistered_type": objcodec.ErrUnregisteredType,
		"unknown_type_id":   objcodec.ErrUnknownTypeID,
		"io":                errors.Mark(errors.New("disk"), objcodec.ErrIO),
		"type_mismatch":     objcodec.ErrTypeMismatch,
		"nil_value":         objcodec.ErrNilValue,
		"depth_exceeded":    objcodec.ErrDepthExceeded,
		"unsupported_type":  objcodec.ErrUnsupportedType,
		"other":             errors.New("something else"),
	}
	for want, err := range cases {
		assert.Equal(t, want, ErrorClass(err), want)
	}
}
