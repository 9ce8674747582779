package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorhub/internal/domain"
)

type recordedCall struct {
	procedure string
	outcome   string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) ObserveCall(procedure, outcome string, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{procedure: procedure, outcome: outcome})
}

func newTestHandler(t *testing.T, recorder CallRecorder) *Handler {
	t.Helper()
	r := NewRouter(testLogger())
	r.Register(&Procedure{
		Name:   "test.echo",
		Access: Public,
		Handle: func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
			var in struct {
				Value string `json:"value"`
			}
			if err := Decode(input, &in); err != nil {
				return nil, err
			}
			return map[string]string{"value": in.Value}, nil
		},
	})
	r.Register(&Procedure{
		Name:   "test.missingThing",
		Access: Public,
		Handle: func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
			return nil, domain.ErrEventNotFound
		},
	})
	return &Handler{
		Router: r,
		Builder: &Builder{
			Provider: &fakeProvider{},
			Store:    &domain.Store{Users: newFakeUserRepo()},
			Logger:   testLogger(),
		},
		Recorder: recorder,
	}
}

func TestHandlerSingleCall(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   ErrorKind
	}{
		{
			name:       "success",
			body:       `{"id": 1, "path": "test.echo", "input": {"value": "hi"}}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "domain error maps to status",
			body:       `{"id": 1, "path": "test.missingThing"}`,
			wantStatus: http.StatusNotFound,
			wantKind:   KindNotFound,
		},
		{
			name:       "unknown procedure",
			body:       `{"id": 1, "path": "test.nope"}`,
			wantStatus: http.StatusNotFound,
			wantKind:   KindNotFound,
		},
		{
			name:       "unknown input field",
			body:       `{"id": 1, "path": "test.echo", "input": {"value": "hi", "bogus": true}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   KindValidation,
		},
		{
			name:       "malformed body",
			body:       `{{{`,
			wantStatus: http.StatusBadRequest,
			wantKind:   KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/rpc", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp CallResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantKind != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantKind, resp.Error.Kind)
				assert.Nil(t, resp.Result)
			} else {
				require.Nil(t, resp.Error)
				assert.JSONEq(t, `{"value": "hi"}`, string(resp.Result))
			}
		})
	}
}

func TestHandlerBatch(t *testing.T) {
	t.Run("batch always returns 200 and isolates failures", func(t *testing.T) {
		h := newTestHandler(t, nil)
		body := `[
			{"id": 0, "path": "test.echo", "input": {"value": "a"}},
			{"id": 1, "path": "test.missingThing"},
			{"id": 2, "path": "test.echo", "input": {"value": "b"}}
		]`
		req := httptest.NewRequest(http.MethodPost, "/api/rpc", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var responses []CallResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &responses))
		require.Len(t, responses, 3)

		byID := make(map[int]CallResponse, len(responses))
		for _, r := range responses {
			byID[r.ID] = r
		}
		assert.JSONEq(t, `{"value": "a"}`, string(byID[0].Result))
		require.NotNil(t, byID[1].Error)
		assert.Equal(t, KindNotFound, byID[1].Error.Kind)
		assert.JSONEq(t, `{"value": "b"}`, string(byID[2].Result))
	})

	t.Run("malformed batch body", func(t *testing.T) {
		h := newTestHandler(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/rpc", strings.NewReader(`[{"id": 0,`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerRecordsOutcomes(t *testing.T) {
	recorder := &fakeRecorder{}
	h := newTestHandler(t, recorder)

	body := `[
		{"id": 0, "path": "test.echo", "input": {"value": "a"}},
		{"id": 1, "path": "test.missingThing"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/rpc", strings.NewReader(body))
	h.ServeHTTP(httptest.NewRecorder(), req)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.calls, 2)
	outcomes := map[string]string{}
	for _, c := range recorder.calls {
		outcomes[c.procedure] = c.outcome
	}
	assert.Equal(t, "ok", outcomes["test.echo"])
	assert.Equal(t, string(KindNotFound), outcomes["test.missingThing"])
}
