package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorhub/internal/domain"
)

type echoInput struct {
	Value string `json:"value"`
}

type echoOutput struct {
	Value string `json:"value"`
}

func TestLocalCallerAndClientAgree(t *testing.T) {
	h := newTestHandler(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx := context.Background()
	local := NewLocalCaller(h.Router, &Context{State: AuthAnonymous, Cookies: NewCookies(nil, nil)})
	remote := NewClient(srv.URL, srv.Client(), nil)

	t.Run("same result through either caller", func(t *testing.T) {
		var localOut, remoteOut echoOutput
		require.NoError(t, local.Call(ctx, "test.echo", echoInput{Value: "hi"}, &localOut))
		require.NoError(t, remote.Call(ctx, "test.echo", echoInput{Value: "hi"}, &remoteOut))
		assert.Equal(t, localOut, remoteOut)
	})

	t.Run("same typed error through either caller", func(t *testing.T) {
		localErr := local.Call(ctx, "test.missingThing", nil, nil)
		remoteErr := remote.Call(ctx, "test.missingThing", nil, nil)

		var localRPC, remoteRPC *Error
		require.ErrorAs(t, localErr, &localRPC)
		require.ErrorAs(t, remoteErr, &remoteRPC)
		assert.Equal(t, localRPC.Kind, remoteRPC.Kind)
		assert.Equal(t, localRPC.Message, remoteRPC.Message)
	})

	t.Run("unknown procedure through either caller", func(t *testing.T) {
		localErr := local.Call(ctx, "test.nope", nil, nil)
		remoteErr := remote.Call(ctx, "test.nope", nil, nil)

		var localRPC, remoteRPC *Error
		require.ErrorAs(t, localErr, &localRPC)
		require.ErrorAs(t, remoteErr, &remoteRPC)
		assert.Equal(t, KindNotFound, localRPC.Kind)
		assert.Equal(t, KindNotFound, remoteRPC.Kind)
	})
}

func TestClientCoalescesConcurrentCalls(t *testing.T) {
	h := newTestHandler(t, nil)

	var exchanges atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		h.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil)
	// A wide window makes the coalescing deterministic under a slow scheduler.
	client.batchWindow = 50 * time.Millisecond

	const calls = 6
	var wg sync.WaitGroup
	results := make([]echoOutput, calls)
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Call(context.Background(), "test.echo", echoInput{Value: "v"}, &results[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < calls; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "v", results[i].Value)
	}
	// Calls issued inside one batch window share an exchange. The exact
	// count depends on timing, but it must be below one-exchange-per-call.
	assert.Less(t, exchanges.Load(), int64(calls))
}

func TestClientFailureIsolation(t *testing.T) {
	h := newTestHandler(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil)

	var wg sync.WaitGroup
	var okOut echoOutput
	var okErr, failErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		okErr = client.Call(context.Background(), "test.echo", echoInput{Value: "fine"}, &okOut)
	}()
	go func() {
		defer wg.Done()
		failErr = client.Call(context.Background(), "test.missingThing", nil, nil)
	}()
	wg.Wait()

	require.NoError(t, okErr)
	assert.Equal(t, "fine", okOut.Value)
	var rpcErr *Error
	require.ErrorAs(t, failErr, &rpcErr)
	assert.Equal(t, KindNotFound, rpcErr.Kind)
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewClient(endpoint, http.DefaultClient, nil)
	err := client.Call(context.Background(), "test.echo", echoInput{Value: "x"}, nil)

	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, KindInternal, rpcErr.Kind)
}

func TestLocalCallerRoundTripsResult(t *testing.T) {
	r := NewRouter(testLogger())
	r.Register(&Procedure{
		Name:   "test.typed",
		Access: Public,
		Handle: func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
			return &domain.Event{ID: "event-1", Name: "DevConf", Published: true}, nil
		},
	})
	local := NewLocalCaller(r, &Context{State: AuthAnonymous})

	var out domain.Event
	require.NoError(t, local.Call(context.Background(), "test.typed", nil, &out))
	assert.Equal(t, "event-1", out.ID)
	assert.True(t, out.Published)
}
