package rpc

import (
	"context"
	"encoding/json"
)

// Caller is the uniform invocation surface over the router. The in-process
// LocalCaller and the networked Client implement it identically: the same
// procedure and input produce the same typed result or *Error through
// either, so pages written against Caller run through both paths unchanged.
type Caller interface {
	Call(ctx context.Context, path string, input any, out any) error
}

// LocalCaller invokes the router directly against a context already built
// from the current request. Used during server-side rendering where the
// request is at hand and a network hop would be wasted.
type LocalCaller struct {
	Router  *Router
	Context *Context
}

// NewLocalCaller returns a LocalCaller bound to the given request context.
func NewLocalCaller(router *Router, rc *Context) *LocalCaller {
	return &LocalCaller{Router: router, Context: rc}
}

// Call invokes the procedure in-process. The result round-trips through
// JSON so the payload is byte-identical to what the network path yields.
func (c *LocalCaller) Call(ctx context.Context, path string, input any, out any) error {
	var raw json.RawMessage
	if input != nil {
		encoded, err := json.Marshal(input)
		if err != nil {
			return Invalid("", "unencodable input: "+err.Error())
		}
		raw = encoded
	}
	result, rerr := c.Router.Call(ctx, c.Context, path, raw)
	if rerr != nil {
		return rerr
	}
	if out == nil {
		return nil
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return Internal()
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return Internal()
	}
	return nil
}
