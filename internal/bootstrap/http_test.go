package bootstrap

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starter-squad/lms/internal/testutil"
)

func newTestHandler(t *testing.T, metricsEnabled bool) (http.Handler, func()) {
	t.Helper()
	cfg := testAppConfig()
	cfg.Observability.MetricsEnabled = metricsEnabled
	mr, client := testutil.SetupMiniRedis(t)

	svcs, err := NewServices(&ServiceDeps{Config: cfg, DB: openLazyDB(t, cfg), RedisClient: client})
	require.NoError(t, err)

	h, err := BuildHTTPHandler(&HTTPServerConfig{Config: cfg, Services: svcs, RedisClient: client})
	require.NoError(t, err)
	return h, mr.Close
}

func TestBuildHTTPHandler_Health(t *testing.T) {
	h, stopRedis := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"redis":"ok"}}`, rec.Body.String())

	stopRedis()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBuildHTTPHandler_Metrics(t *testing.T) {
	h, _ := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), `lms_auth_denials_total{decision="authentication_required",surface="api"} 1`)
}

func TestBuildHTTPHandler_MetricsDisabled(t *testing.T) {
	h, _ := newTestHandler(t, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildHTTPHandler_RequiresServices(t *testing.T) {
	_, err := BuildHTTPHandler(&HTTPServerConfig{Config: testAppConfig()})
	assert.Error(t, err)
}

func TestServe_StopsWhenContextDone(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := newServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), ln.Addr().String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, server, ln, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
