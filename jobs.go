package skrape

import (
	"context"
	"net/http"
	"net/url"
)

// Crawl starts an asynchronous crawl beginning at urls.
//
// Crawl limits are set through opts:
//
//	handle, err := client.Crawl(ctx, []string{"https://example.com"}, &skrape.RequestOptions{
//	    MaxDepth: swag.Int(2),
//	    MaxPages: swag.Int(50),
//	})
func (c *Client) Crawl(ctx context.Context, urls []string, opts *RequestOptions) (*JobHandle, error) {
	return c.submitJob(ctx, "crawl", "/crawl", urls, opts)
}

// GetJob returns the current status of an asynchronous job.
//
// The SDK never polls by itself; call GetJob again until
// job.Status.IsTerminal() reports true.
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobStatus, error) {
	if jobID == "" {
		return nil, newError(CodeBadRequest, "job ID is required", 400, nil)
	}

	var job JobStatus
	err := c.call(ctx, operation{
		id:     "get_job",
		method: http.MethodGet,
		path:   "/get-job",
		query:  url.Values{"jobId": {jobID}},
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
