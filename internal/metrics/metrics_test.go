package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/frame"
	"github.com/vovakirdan/snowglobe/internal/scene"
)

func TestSceneObserverRecordsFrames(t *testing.T) {
	m := New()
	obs := m.Scene("village")

	obs.FrameRendered(2*time.Millisecond, 10)
	obs.FrameRendered(3*time.Millisecond, 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames.WithLabelValues("village")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.nodes.WithLabelValues("village")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.frameSeconds))
}

func TestSceneObserverRecordsFailures(t *testing.T) {
	m := New()
	obs := m.Scene("trainset")

	obs.FrameFailed(&frame.FrameError{Frame: 1, Stage: frame.StageUpdate, Err: errors.New("boom")})
	obs.FrameFailed(&frame.FrameError{Frame: 2, Stage: frame.StageUpdate, Err: errors.New("boom")})
	obs.FrameFailed(&frame.FrameError{Frame: 2, Stage: frame.StageRender, Err: errors.New("boom")})
	obs.LoadFailed(&asset.LoadError{ID: "snowman", Err: asset.ErrNotFound})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.failures.WithLabelValues("trainset", "update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("trainset", "render")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadFailures.WithLabelValues("trainset", "snowman")))
}

func TestObserverWiredIntoScheduler(t *testing.T) {
	m := New()
	obs := m.Scene("test")

	g := scene.NewGraph()
	g.Add(1)
	g.Add(2)
	s := frame.New(g, nil, frame.WithObserver(obs))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Tick())
	}
	s.Stop()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.frames.WithLabelValues("test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.nodes.WithLabelValues("test")))
}

func TestViewerGauge(t *testing.T) {
	m := New()
	m.ViewerStarted()
	m.ViewerStarted()
	m.ViewerEnded()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.viewers))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Scene("village").FrameRendered(time.Millisecond, 5)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `snowglobe_frames_total{scene="village"} 1`)
	assert.Contains(t, string(body), "snowglobe_frame_duration_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
