package assistant

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/config"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newClient(primary, fallback string) *Client {
	return NewClient(&config.AssistantConfig{
		PrimaryURL:  primary,
		FallbackURL: fallback,
		Timeout:     2 * time.Second,
	}, newTestLogger())
}

func TestAsk_Primary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		w.Write([]byte(`{"reply":"Lalibela is best visited between October and March."}`))
	}))
	defer server.Close()

	client := newClient(server.URL, "")
	reply, err := client.Ask(context.Background(), "When should I visit Lalibela?")
	require.NoError(t, err)
	assert.Contains(t, reply, "Lalibela")
}

func TestAsk_FallsBackWhenPrimaryUnreachable(t *testing.T) {
	var fallbackCalls int32
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackCalls, 1)
		w.Write([]byte(`{"reply":"hello from fallback"}`))
	}))
	defer fallback.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close() // connection refused

	client := newClient(dead.URL, fallback.URL)
	reply, err := client.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello from fallback", reply)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fallbackCalls))
}

func TestAsk_BothHostsDown(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	client := newClient(dead.URL, dead.URL)
	_, err := client.Ask(context.Background(), "hello")
	assert.True(t, api.IsNetwork(err))
}

func TestAsk_TimeoutDoesNotFallBack(t *testing.T) {
	var fallbackCalls int32
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackCalls, 1)
		w.Write([]byte(`{"reply":"hello from fallback"}`))
	}))
	defer fallback.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	client := NewClient(&config.AssistantConfig{
		PrimaryURL:  slow.URL,
		FallbackURL: fallback.URL,
		Timeout:     50 * time.Millisecond,
	}, newTestLogger())

	_, err := client.Ask(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fallbackCalls), "a timed-out primary is reachable; the fallback is for refused connections only")
}

func TestAsk_ServerErrorDoesNotFallBack(t *testing.T) {
	var fallbackCalls int32
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackCalls, 1)
	}))
	defer fallback.Close()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	client := newClient(primary.URL, fallback.URL)
	_, err := client.Ask(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fallbackCalls), "only connection failures trigger the fallback host")
}

func TestAsk_EmptyPrompt(t *testing.T) {
	client := newClient("http://127.0.0.1:0", "")
	_, err := client.Ask(context.Background(), "")
	assert.True(t, api.IsValidation(err))
}
