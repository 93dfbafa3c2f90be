//go:build e2e

// End-to-end tests against the live Skrape API.
//
// They are skipped unless SKRAPE_API_KEY is set:
//
//	SKRAPE_API_KEY=sk-... go test -tags e2e -run E2E ./...
//
// SKRAPE_BASE_URL points them at another deployment.
package skrape_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skrape-ai/skrape-go"
)

// newE2EClient creates a client for the live API or skips the test.
func newE2EClient(t *testing.T) *skrape.Client {
	t.Helper()
	key := os.Getenv("SKRAPE_API_KEY")
	if key == "" {
		t.Skip("SKRAPE_API_KEY environment variable is not set")
	}

	opts := []skrape.Option{skrape.WithTimeout(2 * time.Minute)}
	if base := os.Getenv("SKRAPE_BASE_URL"); base != "" {
		opts = append(opts, skrape.WithBaseURL(base))
	}

	client, err := skrape.NewClient(key, opts...)
	require.NoError(t, err)
	return client
}

// newTestContext creates a context with a reasonable timeout for E2E tests.
func newTestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)
	return ctx
}

func TestHealth_E2E(t *testing.T) {
	client := newE2EClient(t)

	health, err := client.Health(newTestContext(t))

	require.NoError(t, err)
	t.Logf("status=%s environment=%s", health.Status, health.Environment)
}

func TestExtract_E2E(t *testing.T) {
	client := newE2EClient(t)

	type page struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	got, err := skrape.ExtractAs[page](newTestContext(t), client, "https://example.com",
		&skrape.RequestOptions{RenderJS: false})

	require.NoError(t, err)
	assert.NotEmpty(t, got.Title)
}

func TestMarkdown_E2E(t *testing.T) {
	client := newE2EClient(t)

	md, err := client.Markdown(newTestContext(t), "https://example.com", nil)

	require.NoError(t, err)
	assert.Contains(t, md, "Example Domain")
}

// TestJobLifecycle_E2E starts a bulk job and polls it to completion.
func TestJobLifecycle_E2E(t *testing.T) {
	client := newE2EClient(t)
	ctx := newTestContext(t)

	handle, err := client.MarkdownBulk(ctx, []string{"https://example.com", "https://example.org"}, nil)
	require.NoError(t, err)
	t.Logf("started job %s: %s", handle.JobID, handle.Message)

	for {
		job, err := client.GetJob(ctx, handle.JobID)
		require.NoError(t, err)
		t.Logf("job status: %s", job.Status)

		if job.Status.IsTerminal() {
			assert.Equal(t, skrape.JobCompleted, job.Status)
			return
		}

		select {
		case <-ctx.Done():
			t.Fatal("job did not finish in time")
		case <-time.After(5 * time.Second):
		}
	}
}

func TestInvalidAPIKey_E2E(t *testing.T) {
	newE2EClient(t) // skip unless live tests are enabled

	client, err := skrape.NewClient("invalid_key")
	require.NoError(t, err)

	_, err = client.Markdown(newTestContext(t), "https://example.com", nil)

	var apiErr *skrape.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}
