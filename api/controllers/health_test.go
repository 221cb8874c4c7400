package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dronemart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-DroneMart-Env"))
}

func TestHealthReadyAllUp(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()

	HealthReady(healthConfig(), map[string]Pinger{"db": ok, "redis": ok, "gcs": nil}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got map[string]any
	decodeData(t, rec, &got)
	checks, _ := got["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["db"])
	assert.NotContains(t, checks, "gcs")
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	rec := httptest.NewRecorder()

	HealthReady(healthConfig(), map[string]Pinger{"db": ok, "redis": down}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	apiErr := requireErrorCode(t, rec, http.StatusServiceUnavailable, string(pkgerrors.CodeDependency))
	assert.Contains(t, string(apiErr.Details), "connection refused")
}
