package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"
)

const maxBodyBytes = 1 << 20

// CallRequest is one procedure invocation frame on the wire.
// swagger:model CallRequest
type CallRequest struct {
	ID    int             `json:"id"`
	Path  string          `json:"path"`
	Input json.RawMessage `json:"input,omitempty"`
}

// CallResponse is the per-invocation result frame, correlated by ID. Exactly
// one of Result and Error is set.
// swagger:model CallResponse
type CallResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// CallRecorder observes completed procedure calls, e.g. for metrics.
type CallRecorder interface {
	ObserveCall(procedure, outcome string, duration time.Duration)
}

// Handler is the HTTP transport for the procedure router. The request body
// is either a single CallRequest or an array of them (a batch). Batched
// calls share one request context, run concurrently, and fail independently.
type Handler struct {
	Router   *Router
	Builder  *Builder
	Recorder CallRecorder
}

// ServeHTTP godoc
// @Summary Invoke procedures
// @Description Executes one procedure call or a batch. A batch body is a JSON array of call frames; responses are correlated by id and each call succeeds or fails independently.
// @Tags rpc
// @Accept json
// @Produce json
// @Param body body rpc.CallRequest true "Call frame (or an array of frames for a batch)"
// @Success 200 {object} rpc.CallResponse
// @Failure 400 {object} rpc.CallResponse
// @Router /api/rpc [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeSingle(w, CallResponse{Error: Invalid("", "unreadable request body")})
		return
	}

	rc := h.Builder.Build(r.Context(), r, w)

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []CallRequest
		if err := json.Unmarshal(body, &batch); err != nil {
			writeSingle(w, CallResponse{Error: Invalid("", "malformed batch body")})
			return
		}
		h.serveBatch(r.Context(), w, rc, batch)
		return
	}

	var single CallRequest
	if err := json.Unmarshal(body, &single); err != nil {
		writeSingle(w, CallResponse{Error: Invalid("", "malformed request body")})
		return
	}
	resp := h.call(r.Context(), rc, single)
	status := http.StatusOK
	if resp.Error != nil {
		status = resp.Error.HTTPStatus()
	}
	writeJSON(w, status, resp)
}

func (h *Handler) serveBatch(ctx context.Context, w http.ResponseWriter, rc *Context, batch []CallRequest) {
	responses := make([]CallResponse, len(batch))
	var wg sync.WaitGroup
	for i, req := range batch {
		wg.Add(1)
		go func(i int, req CallRequest) {
			defer wg.Done()
			responses[i] = h.call(ctx, rc, req)
		}(i, req)
	}
	wg.Wait()
	// Batches always report 200; per-call errors travel inline so one
	// failing call cannot fail its siblings.
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) call(ctx context.Context, rc *Context, req CallRequest) CallResponse {
	start := time.Now()
	result, rerr := h.Router.Call(ctx, rc, req.Path, req.Input)
	if rerr == nil {
		if raw, err := json.Marshal(result); err == nil {
			h.record(req.Path, "ok", start)
			return CallResponse{ID: req.ID, Result: raw}
		}
		rerr = Internal()
	}
	h.record(req.Path, string(rerr.Kind), start)
	return CallResponse{ID: req.ID, Error: rerr}
}

func (h *Handler) record(procedure, outcome string, start time.Time) {
	if h.Recorder != nil {
		h.Recorder.ObserveCall(procedure, outcome, time.Since(start))
	}
}

func writeSingle(w http.ResponseWriter, resp CallResponse) {
	status := http.StatusOK
	if resp.Error != nil {
		status = resp.Error.HTTPStatus()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
