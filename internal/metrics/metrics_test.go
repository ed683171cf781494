package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUseCase_CountsOutcomesAndFields(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.ObserveUseCase(ctx, service.UseCaseEvent{
		Name: "set-task-status", Success: true, Duration: 3 * time.Millisecond,
		Fields: map[string]any{"changed": 2, "status": "COMPLETED"},
	})
	m.ObserveUseCase(ctx, service.UseCaseEvent{
		Name: "set-task-status", Success: false, Err: errors.New("stale"),
	})
	m.ObserveUseCase(ctx, service.UseCaseEvent{
		Name: "load-plan", Success: true,
		Fields: map[string]any{"warnings": 3, "cache": "miss"},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.useCases.WithLabelValues("set-task-status", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.useCases.WithLabelValues("set-task-status", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.entriesChanged.WithLabelValues("COMPLETED")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.integrityWarnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestObserveUseCase_TracksUnlearnedModulesPerCourse(t *testing.T) {
	m := New()
	ctx := context.Background()

	for _, n := range []int{4, 2} {
		m.ObserveUseCase(ctx, service.UseCaseEvent{
			Name: "check-behind-schedule", Success: true,
			Fields: map[string]any{"course_id": "c1", "unlearned_modules": n},
		})
	}
	m.ObserveUseCase(ctx, service.UseCaseEvent{
		Name: "check-behind-schedule", Success: true,
		Fields: map[string]any{"course_id": "c2", "unlearned_modules": 0},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.unlearnedModules.WithLabelValues("c1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.unlearnedModules.WithLabelValues("c2")))
}

func TestRouter_ServesMetricsAndHealth(t *testing.T) {
	m := New()
	m.ObserveUseCase(context.Background(), service.UseCaseEvent{Name: "load-plan", Success: true})

	srv := httptest.NewServer(m.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body strings.Builder
	_, err = io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `studyplan_use_case_total{outcome="success",use_case="load-plan"} 1`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
