// Package skrape provides a Go SDK for the Skrape.ai API.
//
// Skrape.ai is a hosted web-scraping service: it renders pages, extracts
// structured data against a JSON Schema, converts pages to markdown and
// crawls sites asynchronously. This SDK provides a clean, idiomatic Go
// interface to that API.
//
// # Installation
//
// To install the SDK, use go get:
//
//	go get github.com/skrape-ai/skrape-go
//
// # Quick Start
//
// Create a client and extract structured data:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/skrape-ai/skrape-go"
//	)
//
//	type Article struct {
//	    Title  string `json:"title"`
//	    Author string `json:"author,omitempty"`
//	}
//
//	func main() {
//	    client, err := skrape.NewClient(os.Getenv("SKRAPE_API_KEY"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    article, err := skrape.ExtractAs[Article](context.Background(), client,
//	        "https://example.com", &skrape.RequestOptions{RenderJS: true})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(article.Title)
//	}
//
// # Client Configuration
//
// The client can be configured using functional options:
//
//	client, err := skrape.NewClient(apiKey,
//	    skrape.WithBaseURL("https://staging.skrape.ai/api"),
//	    skrape.WithTimeout(2*time.Minute),
//	    skrape.WithHTTPClient(customHTTPClient),
//	)
//
// # Error Handling
//
// Every failure is returned as a [*Error]. Status is the HTTP status code,
// or zero when the request never got a response:
//
//	_, err := client.Markdown(ctx, url, nil)
//	if err != nil {
//	    var apiErr *skrape.Error
//	    if errors.As(err, &apiErr) && apiErr.Code == skrape.CodeRateLimited {
//	        wait, _ := apiErr.RetryAfterDuration()
//	        time.Sleep(wait)
//	    }
//	}
//
// # Asynchronous Jobs
//
// [Client.MarkdownBulk] and [Client.Crawl] return a [JobHandle]. The SDK
// never polls on its own; call [Client.GetJob] until the job reaches a
// terminal state:
//
//	handle, err := client.Crawl(ctx, urls, &skrape.RequestOptions{MaxDepth: swag.Int(2)})
//	...
//	for {
//	    job, err := client.GetJob(ctx, handle.JobID)
//	    if err != nil || job.Status.IsTerminal() {
//	        break
//	    }
//	    time.Sleep(5 * time.Second)
//	}
//
// # Thread Safety
//
// The [Client] is safe for concurrent use by multiple goroutines.
// Each method call is independent and does not share mutable state.
package skrape
