package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Get issues GET path with query and decodes the envelope's data into T.
func Get[T any](ctx context.Context, c *Client, path string, query Query, opts ...RequestOption) (Optional[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query}, opts)
}

// Post issues POST path with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (Optional[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body}, opts)
}

// Put issues PUT path with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (Optional[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodPut, Path: path, Body: body}, opts)
}

// Delete issues DELETE path.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (Optional[T], error) {
	return call[T](ctx, c, Request{Method: http.MethodDelete, Path: path}, opts)
}

func call[T any](ctx context.Context, c *Client, req Request, opts []RequestOption) (Optional[T], error) {
	for _, opt := range opts {
		opt(&req)
	}
	env, err := c.Do(ctx, req)
	if err != nil {
		return None[T](), err
	}
	return Decode[T](env)
}

// Decode unmarshals the envelope's data into T. Missing or null data yields None.
func Decode[T any](env *Envelope) (Optional[T], error) {
	if env == nil || !env.HasData() {
		return None[T](), nil
	}
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return None[T](), fmt.Errorf("failed to decode response data: %w", err)
	}
	return Some(v), nil
}
