package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, retryMax int) *Client {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	c, err := NewClient(Options{BaseURL: baseURL, RetryMax: retryMax, Logger: logger})
	require.NoError(t, err)

	return c
}

func TestNewClient(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	tests := []struct {
		name        string
		baseURL     string
		expectError bool
	}{
		{name: "absolute URL", baseURL: "https://dummyjson.com"},
		{name: "trailing slash", baseURL: "https://dummyjson.com/"},
		{name: "relative URL", baseURL: "/api", expectError: true},
		{name: "garbage", baseURL: "://", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(Options{BaseURL: tt.baseURL, Logger: logger})

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, c)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "https://dummyjson.com", c.baseURL)
			}
		})
	}
}

func TestClient_GetEncodesParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("skip"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	params := struct {
		Limit int `url:"limit"`
		Skip  int `url:"skip"`
	}{Limit: 10, Skip: 20}

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Get(context.Background(), "/posts", params, &out))
	assert.True(t, out.OK)
}

func TestClient_WritesSendJSONBody(t *testing.T) {
	methods := []string{http.MethodPost, http.MethodPut, http.MethodPatch}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, method, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body map[string]int
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, 4, body["likes"])

				_, _ = w.Write([]byte(`{"id":1,"likes":4}`))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, 0)
			var out struct {
				ID    int `json:"id"`
				Likes int `json:"likes"`
			}

			var err error
			body := map[string]int{"likes": 4}
			switch method {
			case http.MethodPost:
				err = c.Post(context.Background(), "/comments/add", body, &out)
			case http.MethodPut:
				err = c.Put(context.Background(), "/comments/1", body, &out)
			case http.MethodPatch:
				err = c.Patch(context.Background(), "/comments/1", body, &out)
			}

			require.NoError(t, err)
			assert.Equal(t, 4, out.Likes)
		})
	}
}

func TestClient_NonSuccessStatusIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Post with id '999' not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	err := c.Delete(context.Background(), "/posts/999", nil)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	assert.Equal(t, http.MethodDelete, remoteErr.Method)
	assert.Contains(t, remoteErr.Body, "not found")
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Contains(t, err.Error(), "404")
}

func TestClient_ReadsAreRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 2)
	var out []string
	require.NoError(t, c.Get(context.Background(), "/posts/tags", nil, &out))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_WritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 3)
	err := c.Post(context.Background(), "/posts/add", map[string]string{"title": "t"}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_NetworkErrorIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestClient(t, url, 0)
	err := c.Delete(context.Background(), "/posts/1", nil)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 0, remoteErr.StatusCode)
	assert.Error(t, errors.Unwrap(remoteErr))
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	var out map[string]any
	err := c.Get(context.Background(), "/posts", nil, &out)

	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}
