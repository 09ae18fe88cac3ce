package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder("auto")
	r.Observe("succeeded", 20*time.Millisecond)
	r.Observe("succeeded", 30*time.Millisecond)
	r.Observe("failed", time.Second)
	r.AddBytes(1000, 400)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.files.WithLabelValues("auto", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.files.WithLabelValues("auto", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.files.WithLabelValues("auto", "skipped")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(r.bytes.WithLabelValues("in")))
	assert.Equal(t, 400.0, testutil.ToFloat64(r.bytes.WithLabelValues("out")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder("video")
	r.Observe("skipped", 0)
	r.Finish("run-1", time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "nested", "mediaconv.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `mediaconv_files_total{mode="video",status="skipped"} 1`)
	assert.Contains(t, text, `mediaconv_run_info{mode="video",run_id="run-1"} 1`)
	assert.Contains(t, text, "mediaconv_last_run_timestamp_seconds 1.7e+09")
	assert.False(t, strings.Contains(text, "go_goroutines"), "private registry only")
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Observe("failed", time.Second)
	r.AddBytes(1, 2)
	r.Finish("x", time.Now())
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}
