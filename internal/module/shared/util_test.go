package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("not found"))
			return
		}
		w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	headers := map[string]string{"accept": "application/json"}

	body, status, err := shared.DoRequest(context.Background(), server.Client(), server.URL+"/pools", headers)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `[1,2,3]`, string(body))

	// 非 200 状态码同时返回响应体
	body, status, err = shared.DoRequest(context.Background(), server.Client(), server.URL+"/missing", headers)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", string(body))
}

func TestDoRequestCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, status, err := shared.DoRequest(ctx, server.Client(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, 0, status)
}

func TestParseJSONResponse(t *testing.T) {
	var out []int
	require.NoError(t, shared.ParseJSONResponse([]byte(`[1,2]`), &out))
	assert.Equal(t, []int{1, 2}, out)

	assert.Error(t, shared.ParseJSONResponse([]byte(`<html>`), &out))

	var obj struct{ A int }
	assert.Error(t, shared.ParseJSONResponse([]byte(`[1]`), &obj))
}

func TestSetupCfgOverrides(t *testing.T) {
	cfg := shared.SetupCfg(map[string]interface{}{"backend.url": "http://backend:9000"})

	assert.Equal(t, "http://backend:9000", cfg.String("backend.url"))
	assert.Equal(t, "include", cfg.String("dashboard.chain-filter-mode"))
	assert.Equal(t, 3, cfg.Int("query.retry"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *shared.Metrics
	assert.NotPanics(t, func() {
		m.CacheHit("memory")
		m.CacheMiss()
		m.ObserveFetch("pools", 0, nil)
		m.SetEntries(3)
	})
}
