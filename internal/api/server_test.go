package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"restogrades/internal/logging"
	"restogrades/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingStore holds list requests until release is closed.
type blockingStore struct {
	Store
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) FindAllRestaurants(ctx context.Context, limit int) ([]model.Restaurant, error) {
	close(s.entered)
	<-s.release
	return []model.Restaurant{}, nil
}

func TestServeDrainsInFlightRequests(t *testing.T) {
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	srv := NewServer(logging.NewTestLogger(), Config{ListLimit: 50}, store)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, l) }()

	type result struct {
		status int
		body   string
		err    error
	}
	responses := make(chan result, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/restaurants", l.Addr()))
		if err != nil {
			responses <- result{err: err}
			return
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		responses <- result{status: resp.StatusCode, body: string(raw)}
	}()

	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the store")
	}

	cancel()
	select {
	case err := <-served:
		t.Fatalf("Serve returned with a request in flight: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(store.release)
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the request drained")
	}

	res := <-responses
	require.NoError(t, res.err)
	assert.Equal(t, http.StatusOK, res.status)
	assert.JSONEq(t, `{"restaurants": []}`, res.body)

	// stopping again is harmless
	srv.Stop()
}

func TestStopBeforeServeIsNoop(t *testing.T) {
	srv := NewServer(logging.NewTestLogger(), Config{}, &blockingStore{})
	srv.Stop()
}

func TestStartFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()

	port := l.Addr().(*net.TCPAddr).Port
	srv := NewServer(logging.NewTestLogger(), Config{Port: port}, &blockingStore{})
	err = srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("failed to listen on port %d", port))
}
