package bootstrap

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeLifecycleLogger struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

func (f *fakeLifecycleLogger) Log(_ context.Context, event LifecycleEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func TestNewHTTPServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := NewHTTPServer(gin.New(), ServerConfig{
		Port:         "8081",
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
		IdleTimeout:  3 * time.Second,
	})

	assert.Equal(t, ":8081", server.Addr)
	assert.Equal(t, time.Second, server.ReadTimeout)
	assert.Equal(t, 2*time.Second, server.WriteTimeout)
	assert.Equal(t, 3*time.Second, server.IdleTimeout)
}

func TestRunHTTPServer_ShutdownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := &http.Server{Addr: "127.0.0.1:0", Handler: gin.New()}
	lifecycle := &fakeLifecycleLogger{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunHTTPServer(ctx, server, lifecycle)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	lifecycle.mu.Lock()
	defer lifecycle.mu.Unlock()
	if assert.Len(t, lifecycle.events, 1) {
		assert.Equal(t, "SERVER_SHUTDOWN", lifecycle.events[0].Action)
	}
}
