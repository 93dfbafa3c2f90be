package skrape

import (
	"context"
	"encoding/json"
	"net/http"
)

type extractBody struct {
	URL     string          `json:"url"`
	Schema  map[string]any  `json:"schema"`
	Options *RequestOptions `json:"options,omitempty"`
}

// Extract scrapes req.URL and returns structured data shaped like req.Schema.
//
// The result is returned exactly as the service sent it. Use [ExtractAs]
// to decode it into a Go type in one step.
//
//	raw, err := client.Extract(ctx, &skrape.ExtractRequest{
//	    URL: "https://example.com",
//	    Schema: skrape.Schema{
//	        "type":       "object",
//	        "properties": map[string]any{"title": map[string]any{"type": "string"}},
//	    },
//	    Options: &skrape.RequestOptions{RenderJS: true},
//	})
func (c *Client) Extract(ctx context.Context, req *ExtractRequest) (json.RawMessage, error) {
	resp, err := c.ExtractResult(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// ExtractResult is like [Client.Extract] but also returns the quota usage
// the service reported with the result.
func (c *Client) ExtractResult(ctx context.Context, req *ExtractRequest) (*ExtractResponse, error) {
	if req == nil {
		return nil, newError(CodeBadRequest, "request is required", 400, nil)
	}
	if req.URL == "" {
		return nil, newError(CodeBadRequest, "url is required", 400, nil)
	}

	schema, err := ConvertSchema(req.Schema)
	if err != nil {
		return nil, err
	}

	var env resultEnvelope
	err = c.call(ctx, operation{
		id:     "extract",
		method: http.MethodPost,
		path:   "/extract",
		body: extractBody{
			URL:     req.URL,
			Schema:  schema,
			Options: req.Options,
		},
	}, &env)
	if err != nil {
		return nil, err
	}

	result, err := env.value()
	if err != nil {
		return nil, err
	}

	if c.validate {
		if err := validateResult(schema, result); err != nil {
			return nil, err
		}
	}

	return &ExtractResponse{Result: result, Usage: env.Usage}, nil
}

// ExtractAs extracts data from url using a schema reflected from T and
// decodes the result into a T.
//
//	type Product struct {
//	    Title string  `json:"title"`
//	    Price float64 `json:"price"`
//	}
//
//	product, err := skrape.ExtractAs[Product](ctx, client, url, nil)
func ExtractAs[T any](ctx context.Context, c *Client, url string, opts *RequestOptions) (*T, error) {
	raw, err := c.Extract(ctx, &ExtractRequest{
		URL:     url,
		Schema:  SchemaFor[T](),
		Options: opts,
	})
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, newError(CodeInvalidResponse, "result does not match the requested type", http.StatusOK, err)
	}
	return &out, nil
}
