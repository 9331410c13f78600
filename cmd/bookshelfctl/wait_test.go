package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8000/health", healthURL("localhost", 8000))
	assert.Equal(t, "http://[::1]:9000/health", healthURL("::1", 9000))
}

func TestWaitForServer(t *testing.T) {
	t.Run("ready after database comes up", func(t *testing.T) {
		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := waitForServer(context.Background(), ts.URL+"/health", 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		err := waitForServer(context.Background(), ts.URL+"/health", 2, time.Millisecond)
		assert.EqualError(t, err, "not ready after 2 attempts")
	})
}
