package skrape

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// RequestOptions configures how the service fetches and processes pages.
//
// Options are forwarded to the API as-is; the SDK does not validate them.
// Not every option applies to every operation: the crawl limits only
// matter to [Client.Crawl], and [Client.Extract] ignores CallbackURL.
//
//	opts := &skrape.RequestOptions{
//	    RenderJS:    true,
//	    CallbackURL: "https://example.com/hooks/skrape",
//	    MaxDepth:    swag.Int(2),
//	}
type RequestOptions struct {
	// RenderJS runs the page in a headless browser before processing.
	RenderJS bool `json:"renderJs"`

	// CallbackURL receives a POST when an asynchronous job finishes.
	CallbackURL string `json:"callbackUrl,omitempty"`

	// MaxDepth limits how many links deep a crawl follows.
	MaxDepth *int `json:"maxDepth,omitempty"`

	// MaxPages limits the total number of pages a crawl visits.
	MaxPages *int `json:"maxPages,omitempty"`

	// MaxLinks limits how many links are followed from each page.
	MaxLinks *int `json:"maxLinks,omitempty"`

	// LinksOnly makes a crawl return discovered links without page content.
	LinksOnly *bool `json:"linksOnly,omitempty"`

	// Actions are browser automation steps run in order before extraction,
	// e.g. {"type": "click", "selector": "#load-more"}.
	Actions []Action `json:"actions,omitempty"`
}

// Action is a single browser automation step. Its shape is defined by the
// service and passed through unchanged.
type Action map[string]any

// ExtractRequest is the input to [Client.Extract].
type ExtractRequest struct {
	// URL is the page to extract from. Required.
	URL string

	// Schema describes the shape of the expected result. Required.
	Schema SchemaDescriptor

	// Options tweaks fetching. Omitted from the request when nil.
	Options *RequestOptions
}

// Usage reports the account quota left after a synchronous request.
//
// It is nil on responses where the service did not include it.
type Usage struct {
	// Remaining is the number of requests left in the current plan.
	Remaining int `json:"remaining"`

	// RateLimit describes the short-term request window.
	RateLimit RateLimit `json:"rateLimit"`
}

// RateLimit is the state of the per-key request window.
type RateLimit struct {
	Remaining  int `json:"remaining"`
	BaseLimit  int `json:"baseLimit"`
	BurstLimit int `json:"burstLimit"`

	// Reset is when the window refills, as a Unix timestamp.
	Reset int64 `json:"reset"`
}

// ExtractResponse is the result of [Client.ExtractResult].
type ExtractResponse struct {
	Result json.RawMessage
	Usage  *Usage
}

// MarkdownResponse is the result of [Client.MarkdownResult].
type MarkdownResponse struct {
	Result string
	Usage  *Usage
}

// JobHandle identifies an asynchronous job started by [Client.MarkdownBulk]
// or [Client.Crawl]. Pass JobID to [Client.GetJob] to follow its progress.
type JobHandle struct {
	// JobID is the opaque identifier of the job.
	JobID string `json:"jobId"`

	// Message is a human readable acknowledgement from the service.
	Message string `json:"message"`
}

// JobState is the lifecycle state of an asynchronous job.
type JobState string

// Job states. COMPLETED, FAILED and CANCELED are terminal.
const (
	JobPending   JobState = "PENDING"
	JobRunning   JobState = "RUNNING"
	JobCompleted JobState = "COMPLETED"
	JobFailed    JobState = "FAILED"
	JobCanceled  JobState = "CANCELED"
)

// IsTerminal returns true once the job will no longer change state.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCanceled:
		return true
	}
	return false
}

// JobStatus is the status of an asynchronous job as returned by
// [Client.GetJob].
//
//	job, err := client.GetJob(ctx, handle.JobID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if job.Status == skrape.JobCompleted {
//	    fmt.Println(string(job.Output))
//	}
type JobStatus struct {
	// Status is the current job state.
	Status JobState `json:"status"`

	// Output holds the job result once completed. For bulk markdown and
	// crawl jobs this is a JSON array with one entry per URL.
	Output json.RawMessage `json:"output,omitempty"`

	// Error holds the failure payload of a FAILED job.
	Error json.RawMessage `json:"error,omitempty"`

	// CreatedAt is when the job was submitted.
	CreatedAt Timestamp `json:"createdAt"`

	// Completed is the server's own view of whether the job is finished.
	Completed bool `json:"isCompleted"`
}

// IsCompleted returns true if the server reports the job as finished.
func (j *JobStatus) IsCompleted() bool {
	return j.Completed
}

// IsFailed returns true if the job ended in the FAILED state.
func (j *JobStatus) IsFailed() bool {
	return j.Status == JobFailed
}

// IsRunning returns true if the job is pending or running.
func (j *JobStatus) IsRunning() bool {
	return j.Status == JobPending || j.Status == JobRunning
}

// HealthResponse represents the health status of the Skrape API.
//
// Use [Client.Health] to retrieve it:
//
//	health, err := client.Health(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %s (%s)\n", health.Status, health.Environment)
type HealthResponse struct {
	// Status is "healthy" or "unhealthy".
	Status string `json:"status"`

	// Timestamp is the server time at which the check ran.
	Timestamp Timestamp `json:"timestamp"`

	// Environment names the deployment answering the request,
	// e.g. "production".
	Environment string `json:"environment"`
}

// IsHealthy returns true if the status is "healthy".
func (h *HealthResponse) IsHealthy() bool {
	return h.Status == StatusHealthy
}

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Timestamp is a point in time reported by the service.
//
// It decodes RFC 3339 strings as well as Unix epoch numbers, in seconds or
// milliseconds. null and "" decode to the zero time. It always encodes in
// the strfmt.DateTime format, e.g. "2024-01-01T00:00:00.000Z".
type Timestamp strfmt.DateTime

// epochMillisThreshold separates epoch seconds from epoch milliseconds;
// 1e11 seconds is roughly the year 5138.
const epochMillisThreshold = 1e11

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null" || s == `""`:
		*t = Timestamp{}
		return nil
	case strings.HasPrefix(s, `"`):
		var dt strfmt.DateTime
		if err := dt.UnmarshalJSON([]byte(s)); err != nil {
			return err
		}
		*t = Timestamp(dt)
		return nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is neither a date string nor an epoch number", s)
	}
	if n >= epochMillisThreshold {
		*t = Timestamp(time.UnixMilli(int64(n)).UTC())
	} else {
		*t = Timestamp(time.Unix(int64(n), 0).UTC())
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strfmt.DateTime(t).MarshalJSON()
}

// Time returns t as a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string {
	return strfmt.DateTime(t).String()
}
