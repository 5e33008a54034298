package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSONDecodesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k", r.Header.Get("X-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	var out struct {
		ID string `json:"id"`
	}
	err := DoJSON(context.Background(), srv.Client(), Request{
		Op:     "test",
		Method: http.MethodPost,
		URL:    srv.URL,
		Header: http.Header{"X-Key": []string{"k"}},
		Body:   map[string]string{"a": "b"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.ID)
}

func TestDoJSONNonSuccessIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 2*maxErrorBody), http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := DoJSON(context.Background(), srv.Client(), Request{Op: "probe", Method: http.MethodGet, URL: srv.URL}, nil)
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "probe", ue.Op)
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
	assert.Len(t, ue.Body, maxErrorBody)
	assert.True(t, IsUpstream(err))
}

func TestDoJSONTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := DoJSON(context.Background(), http.DefaultClient, Request{Op: "dial", Method: http.MethodGet, URL: url}, nil)
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Zero(t, ue.Status)
	assert.Error(t, ue.Unwrap())
	assert.Contains(t, ue.Error(), "dial")
}

func TestDoJSONBadBodyIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := DoJSON(context.Background(), srv.Client(), Request{Op: "decode", Method: http.MethodGet, URL: srv.URL}, &out)
	assert.True(t, IsUpstream(err))
}

func TestDoJSONOversizedBodyIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"`))
		_, _ = w.Write([]byte(strings.Repeat("a", maxResponseBody)))
		_, _ = w.Write([]byte(`"}`))
	}))
	defer srv.Close()

	var out struct {
		ID string `json:"id"`
	}
	err := DoJSON(context.Background(), srv.Client(), Request{Op: "big", Method: http.MethodGet, URL: srv.URL}, &out)
	require.Error(t, err)
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusOK, ue.Status)
	assert.Contains(t, ue.Error(), "exceeds")
	assert.Empty(t, out.ID)
}
