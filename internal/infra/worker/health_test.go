package worker

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthServer_Liveness(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())

	recorder := httptest.NewRecorder()
	h.handleLiveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthServer_ReadinessTransitions(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())

	recorder := httptest.NewRecorder()
	h.handleReadiness(recorder, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code, "starts not ready")

	h.SetReady(true)
	recorder = httptest.NewRecorder()
	h.handleReadiness(recorder, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	h.SetReady(false)
	recorder = httptest.NewRecorder()
	h.handleReadiness(recorder, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
