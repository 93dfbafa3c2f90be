package skrape

import (
	"context"
	"encoding/json"
	"net/http"
)

type markdownBody struct {
	URL     string         `json:"url"`
	Options RequestOptions `json:"options"`
}

type bulkBody struct {
	URLs    []string       `json:"urls"`
	Options RequestOptions `json:"options"`
}

// Markdown converts the page at url to markdown.
//
// A nil opts sends the default options ({"renderJs": false}).
func (c *Client) Markdown(ctx context.Context, url string, opts *RequestOptions) (string, error) {
	resp, err := c.MarkdownResult(ctx, url, opts)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// MarkdownResult is like [Client.Markdown] but also returns the quota usage
// the service reported with the result.
//
//	resp, err := client.MarkdownResult(ctx, "https://example.com", nil)
//	if err != nil {
//	    return err
//	}
//	if resp.Usage != nil {
//	    fmt.Printf("%d requests remaining\n", resp.Usage.Remaining)
//	}
func (c *Client) MarkdownResult(ctx context.Context, url string, opts *RequestOptions) (*MarkdownResponse, error) {
	if url == "" {
		return nil, newError(CodeBadRequest, "url is required", 400, nil)
	}

	var env resultEnvelope
	err := c.call(ctx, operation{
		id:     "markdown",
		method: http.MethodPost,
		path:   "/markdown",
		body: markdownBody{
			URL:     url,
			Options: optionsOrDefault(opts),
		},
	}, &env)
	if err != nil {
		return nil, err
	}

	raw, err := env.value()
	if err != nil {
		return nil, err
	}
	var md string
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, newError(CodeInvalidResponse, "markdown result is not a string", http.StatusOK, err)
	}
	return &MarkdownResponse{Result: md, Usage: env.Usage}, nil
}

// MarkdownBulk starts an asynchronous job converting every URL to markdown.
//
// Poll the returned handle with [Client.GetJob]. Once completed the job
// output holds one markdown document per URL.
func (c *Client) MarkdownBulk(ctx context.Context, urls []string, opts *RequestOptions) (*JobHandle, error) {
	return c.submitJob(ctx, "markdown_bulk", "/markdown/bulk", urls, opts)
}

// submitJob posts {urls, options} to path and decodes the job handle.
func (c *Client) submitJob(ctx context.Context, id, path string, urls []string, opts *RequestOptions) (*JobHandle, error) {
	if len(urls) == 0 {
		return nil, newError(CodeBadRequest, "at least one url is required", 400, nil)
	}
	for _, u := range urls {
		if u == "" {
			return nil, newError(CodeBadRequest, "urls must not be empty", 400, nil)
		}
	}

	var handle JobHandle
	err := c.call(ctx, operation{
		id:     id,
		method: http.MethodPost,
		path:   path,
		body: bulkBody{
			URLs:    urls,
			Options: optionsOrDefault(opts),
		},
	}, &handle)
	if err != nil {
		return nil, err
	}
	if handle.JobID == "" {
		return nil, newError(CodeInvalidResponse, "response has no jobId", http.StatusOK, nil)
	}
	return &handle, nil
}

func optionsOrDefault(opts *RequestOptions) RequestOptions {
	if opts == nil {
		return RequestOptions{}
	}
	return *opts
}
