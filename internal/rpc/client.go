package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultBatchWindow is how long the client waits for sibling calls to join
// a batch before flushing it.
const DefaultBatchWindow = time.Millisecond

// Client is the networked Caller. Calls made while a flush is pending are
// coalesced into a single transport exchange; within that exchange every
// call succeeds or fails independently.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	header      http.Header
	batchWindow time.Duration

	mu             sync.Mutex
	pending        []*pendingCall
	flushScheduled bool
}

type pendingCall struct {
	path  string
	input json.RawMessage
	done  chan callOutcome
}

type callOutcome struct {
	result json.RawMessage
	err    *Error
}

// NewClient returns a Client for the given /api/rpc endpoint. header is
// copied onto every exchange (e.g. a Cookie header carrying the session);
// it may be nil.
func NewClient(endpoint string, httpClient *http.Client, header http.Header) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		header:      header,
		batchWindow: DefaultBatchWindow,
	}
}

// Call enqueues the invocation and waits for its outcome. Concurrent calls
// issued within the batch window travel in one exchange.
func (c *Client) Call(ctx context.Context, path string, input any, out any) error {
	var raw json.RawMessage
	if input != nil {
		encoded, err := json.Marshal(input)
		if err != nil {
			return Invalid("", "unencodable input: "+err.Error())
		}
		raw = encoded
	}

	pc := &pendingCall{path: path, input: raw, done: make(chan callOutcome, 1)}
	c.mu.Lock()
	c.pending = append(c.pending, pc)
	if !c.flushScheduled {
		c.flushScheduled = true
		go c.flushAfterWindow()
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case outcome := <-pc.done:
		if outcome.err != nil {
			return outcome.err
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(outcome.result, out); err != nil {
			return &Error{Kind: KindInternal, Message: "undecodable result: " + err.Error()}
		}
		return nil
	}
}

func (c *Client) flushAfterWindow() {
	time.Sleep(c.batchWindow)
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.flushScheduled = false
	c.mu.Unlock()
	if len(batch) > 0 {
		c.send(batch)
	}
}

func (c *Client) send(batch []*pendingCall) {
	frames := make([]CallRequest, len(batch))
	for i, pc := range batch {
		frames[i] = CallRequest{ID: i, Path: pc.path, Input: pc.input}
	}
	body, err := json.Marshal(frames)
	if err != nil {
		c.failAll(batch, transportError(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.failAll(batch, transportError(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	for name, values := range c.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.failAll(batch, transportError(err))
		return
	}
	defer resp.Body.Close()

	var responses []CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&responses); err != nil {
		c.failAll(batch, transportError(err))
		return
	}

	byID := make(map[int]CallResponse, len(responses))
	for _, r := range responses {
		byID[r.ID] = r
	}
	for i, pc := range batch {
		r, ok := byID[i]
		if !ok {
			pc.done <- callOutcome{err: transportError(fmt.Errorf("missing response for call %d", i))}
			continue
		}
		pc.done <- callOutcome{result: r.Result, err: r.Error}
	}
}

func (c *Client) failAll(batch []*pendingCall, rerr *Error) {
	for _, pc := range batch {
		pc.done <- callOutcome{err: rerr}
	}
}

func transportError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "transport: " + err.Error()}
}
