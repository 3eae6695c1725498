package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeFor(t *testing.T, check CheckFunc) *probe {
	t.Helper()
	return newProbe("test", time.Second, check)
}

func TestProbe_FailureThreshold(t *testing.T) {
	p := probeFor(t, func(context.Context) error {
		return errors.New("db down")
	})
	ctx := context.Background()

	// Two failures are tolerated, the third flips the probe.
	p.run(ctx)
	p.run(ctx)
	ok, _ := p.status()
	assert.True(t, ok)

	p.run(ctx)
	ok, msg := p.status()
	assert.False(t, ok)
	assert.Equal(t, "db down", msg)
}

func TestProbe_RecoversAfterSuccess(t *testing.T) {
	healthy := false
	p := probeFor(t, func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("warming up")
	})
	ctx := context.Background()

	for i := 0; i < failuresToUnhealthy; i++ {
		p.run(ctx)
	}
	ok, _ := p.status()
	require.False(t, ok)

	healthy = true
	p.run(ctx)
	ok, _ = p.status()
	assert.True(t, ok)
}

func TestIsReady(t *testing.T) {
	h := New()
	assert.False(t, h.IsReady(), "not ready before SetReady")

	h.SetReady(true)
	assert.True(t, h.IsReady())

	h.AddReadinessCheck("dep", time.Second, func(context.Context) error {
		return errors.New("unreachable")
	})
	assert.True(t, h.IsReady(), "unrun check is assumed healthy")

	ctx := context.Background()
	for i := 0; i < failuresToUnhealthy; i++ {
		h.readiness[0].run(ctx)
	}
	assert.False(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("loop", time.Second, func(context.Context) error { return nil })

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "service is not ready", resp.Checks["_readiness"])
}

func TestReadyEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("postgres", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	for i := 0; i < failuresToUnhealthy; i++ {
		h.readiness[0].run(context.Background())
	}

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestStartStop(t *testing.T) {
	h := New()
	ran := make(chan struct{}, 1)
	h.AddLivenessCheck("tick", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("check did not run")
	}
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
