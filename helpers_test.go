package skrape_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skrape-ai/skrape-go"
)

const testAPIKey = "test-key"

// mustEncode encodes v as JSON and writes it to w.
// Panics on error - safe in tests since errors indicate test bugs.
func mustEncode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("failed to encode response: " + err.Error())
	}
}

// mustDecode decodes JSON from r.Body into v.
// Panics on error - safe in tests since errors indicate test bugs.
func mustDecode(r *http.Request, v interface{}) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		panic("failed to decode request: " + err.Error())
	}
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	mustEncode(w, v)
}

// newTestClient creates a client pointed at baseURL.
func newTestClient(t *testing.T, baseURL string, opts ...skrape.Option) *skrape.Client {
	t.Helper()
	opts = append([]skrape.Option{skrape.WithBaseURL(baseURL)}, opts...)
	client, err := skrape.NewClient(testAPIKey, opts...)
	require.NoError(t, err)
	return client
}

// requireSDKError asserts err is an *skrape.Error and returns it.
func requireSDKError(t *testing.T, err error) *skrape.Error {
	t.Helper()
	require.Error(t, err)
	var apiErr *skrape.Error
	require.ErrorAs(t, err, &apiErr)
	return apiErr
}

// roundTripFunc lets tests supply a transport without a server.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
