package skrape

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
)

// maxErrorBodySize limits the size of error response bodies read from the server.
// This prevents memory exhaustion from misconfigured servers that return
// extremely large error pages.
const maxErrorBodySize = 4096

// maxResponseSize caps successful response bodies. Bulk job outputs can be
// large, but never this large.
const maxResponseSize = 64 << 20

// operation describes a single API call.
type operation struct {
	// id names the operation in logs and metrics, e.g. "extract".
	id     string
	method string
	path   string
	query  url.Values
	body   any
}

// call dispatches op and decodes a successful JSON response into out.
// Every error it returns is an *Error.
func (c *Client) call(ctx context.Context, op operation, out any) error {
	if c.maxRetries > 0 {
		return c.callWithRetry(ctx, op, out)
	}
	return c.send(ctx, op, out)
}

// send performs exactly one attempt and records it.
func (c *Client) send(ctx context.Context, op operation, out any) error {
	start := time.Now()
	err := c.submit(ctx, op, out)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.observe(op.id, elapsed, err)
	}

	ev := c.logger.Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("operation", op.id).
		Str("method", op.method).
		Str("path", op.path).
		Dur("elapsed", elapsed).
		Msg("skrape request")

	return err
}

func (c *Client) submit(ctx context.Context, op operation, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return normalizeError(ctx.Err())
			}
			// The limiter refuses to wait past the context deadline.
			return newError(CodeTimeout, err.Error(), 0, err)
		}
	}

	var payload json.RawMessage
	if op.body != nil {
		data, err := json.Marshal(op.body)
		if err != nil {
			return newError(CodeBadRequest, "failed to encode request body", 0, err)
		}
		payload = data
	}

	_, err := c.runtime.Submit(&runtime.ClientOperation{
		ID:                 op.id,
		Method:             op.method,
		PathPattern:        op.path,
		ProducesMediaTypes: []string{runtime.JSONMime},
		ConsumesMediaTypes: []string{runtime.JSONMime},
		AuthInfo:           httptransport.BearerToken(c.apiKey),
		Params: runtime.ClientRequestWriterFunc(func(r runtime.ClientRequest, _ strfmt.Registry) error {
			if err := writeRequest(r, c, op, payload); err != nil {
				return newError(CodeBadRequest, "failed to build request", 0, err)
			}
			return nil
		}),
		Reader: runtime.ClientResponseReaderFunc(func(resp runtime.ClientResponse, _ runtime.Consumer) (any, error) {
			return nil, readResponse(resp, out)
		}),
		Context: ctx,
	})
	if err != nil {
		return normalizeError(err)
	}
	return nil
}

// writeRequest fills in r. Failures here mean the request can never be
// sent, so the caller reports them as non-retryable.
func writeRequest(r runtime.ClientRequest, c *Client, op operation, payload json.RawMessage) error {
	if err := r.SetTimeout(c.timeout); err != nil {
		return err
	}
	if err := r.SetHeaderParam("User-Agent", c.userAgent); err != nil {
		return err
	}
	for key, values := range op.query {
		if err := r.SetQueryParam(key, values...); err != nil {
			return err
		}
	}
	if payload != nil {
		return r.SetBodyParam(payload)
	}
	return nil
}

// readResponse turns a non-2xx response into an *Error and decodes the body
// of a successful one into out.
func readResponse(resp runtime.ClientResponse, out any) error {
	code := resp.Code()
	body := resp.Body()

	if code < 200 || code > 299 {
		data, _ := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
		return newStatusError(code, resp.GetHeader("Retry-After"), data)
	}

	data, err := io.ReadAll(io.LimitReader(body, maxResponseSize))
	if err != nil {
		return newError(CodeConnectionFailed, "failed to read response body", code, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(CodeInvalidResponse, "failed to decode response", code, err)
	}
	return nil
}

// normalizeError maps a failure that happened before a response was read
// onto an *Error. Errors that already are an *Error pass through unchanged.
func normalizeError(err error) *Error {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(CodeTimeout, err.Error(), 0, err)
	case errors.Is(err, context.Canceled):
		return newError(CodeCanceled, err.Error(), 0, err)
	}
	return newError(CodeConnectionFailed, err.Error(), 0, err)
}

// resultEnvelope is the {"result": ..., "usage": ...} wrapper used by the
// synchronous endpoints.
type resultEnvelope struct {
	Result json.RawMessage `json:"result"`
	Usage  *Usage          `json:"usage,omitempty"`
}

// value returns the raw result, failing when the field is absent or null.
func (e *resultEnvelope) value() (json.RawMessage, error) {
	if len(e.Result) == 0 || string(e.Result) == "null" {
		return nil, newError(CodeInvalidResponse, "response has no result", http.StatusOK, nil)
	}
	return e.Result, nil
}
