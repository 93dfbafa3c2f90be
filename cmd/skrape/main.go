// Command skrape calls the Skrape.ai API from the shell.
//
// Usage:
//
//	skrape [global flags] <command> [command flags] [args]
//
// Commands:
//
//	health                      check API health
//	extract -schema file URL    extract structured data
//	markdown URL                convert a page to markdown
//	bulk URL...                 start a bulk markdown job
//	crawl URL...                start a crawl job
//	job [-wait] ID              show job status
//
// The API key is read from SKRAPE_API_KEY (a .env file in the working
// directory is loaded first) or from apiKey in skrape.yaml.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/go-openapi/swag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skrape-ai/skrape-go"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		var apiErr *skrape.Error
		if errors.As(err, &apiErr) {
			ev := log.Error().Str("code", apiErr.Code).Int("status", apiErr.Status)
			if apiErr.RetryAfter != nil {
				ev = ev.Int("retry_after", *apiErr.RetryAfter)
			}
			ev.Msg(apiErr.Message)
		} else {
			log.Error().Err(err).Msg("skrape failed")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("skrape", flag.ContinueOnError)
	configPath := global.String("config", defaultConfigFile, "path to YAML config file")
	apiKey := global.String("api-key", "", "API key (overrides SKRAPE_API_KEY)")
	baseURL := global.String("base-url", "", "API base URL")
	retries := global.Int("retries", -1, "max retries for temporary failures")
	verbose := global.Bool("v", false, "log every request")
	if err := global.Parse(args); err != nil {
		return err
	}

	explicit := false
	global.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		return err
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *retries >= 0 {
		cfg.MaxRetries = *retries
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}

	client, err := newClient(cfg, log.Logger.Level(level))
	if err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		return errors.New("missing command: health, extract, markdown, bulk, crawl or job")
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "health":
		health, err := client.Health(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, health)
	case "extract":
		return runExtract(ctx, client, cmdArgs, stdout)
	case "markdown":
		return runMarkdown(ctx, client, cmdArgs, stdout)
	case "bulk", "crawl":
		return runJob(ctx, client, cmd, cmdArgs, stdout)
	case "job":
		return runStatus(ctx, client, cmdArgs, stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newClient(cfg *Config, logger zerolog.Logger) (*skrape.Client, error) {
	opts := []skrape.Option{
		skrape.WithLogger(logger),
		skrape.WithRetries(cfg.MaxRetries),
		skrape.WithUserAgent("skrape-cli/" + skrape.Version),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, skrape.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, skrape.WithTimeout(cfg.Timeout))
	}
	return skrape.NewClient(cfg.APIKey, opts...)
}

// requestFlags registers the options shared by every scraping command.
func requestFlags(fs *flag.FlagSet) func() *skrape.RequestOptions {
	renderJS := fs.Bool("render-js", false, "render the page with JavaScript")
	callback := fs.String("callback-url", "", "URL notified when a job finishes")
	maxDepth := fs.Int("max-depth", 0, "crawl: max link depth")
	maxPages := fs.Int("max-pages", 0, "crawl: max pages")
	maxLinks := fs.Int("max-links", 0, "crawl: max links per page")
	linksOnly := fs.Bool("links-only", false, "crawl: return links only")

	return func() *skrape.RequestOptions {
		opts := &skrape.RequestOptions{
			RenderJS:    *renderJS,
			CallbackURL: *callback,
		}
		if *maxDepth > 0 {
			opts.MaxDepth = swag.Int(*maxDepth)
		}
		if *maxPages > 0 {
			opts.MaxPages = swag.Int(*maxPages)
		}
		if *maxLinks > 0 {
			opts.MaxLinks = swag.Int(*maxLinks)
		}
		if *linksOnly {
			opts.LinksOnly = swag.Bool(true)
		}
		return opts
	}
}

func runExtract(ctx context.Context, client *skrape.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	schemaPath := fs.String("schema", "", "path to a JSON Schema file (required)")
	options := requestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *schemaPath == "" || fs.NArg() != 1 {
		return errors.New("usage: extract -schema file.json URL")
	}

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	result, err := client.Extract(ctx, &skrape.ExtractRequest{
		URL:     fs.Arg(0),
		Schema:  skrape.SchemaJSON(schema),
		Options: options(),
	})
	if err != nil {
		return err
	}
	return printJSON(stdout, result)
}

func runMarkdown(ctx context.Context, client *skrape.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("markdown", flag.ContinueOnError)
	options := requestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: markdown URL")
	}

	resp, err := client.MarkdownResult(ctx, fs.Arg(0), options())
	if err != nil {
		return err
	}
	if resp.Usage != nil {
		log.Info().
			Int("remaining", resp.Usage.Remaining).
			Int("rate_limit_remaining", resp.Usage.RateLimit.Remaining).
			Msg("API usage")
	}
	_, err = fmt.Fprintln(stdout, resp.Result)
	return err
}

func runJob(ctx context.Context, client *skrape.Client, cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	options := requestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		handle *skrape.JobHandle
		err    error
	)
	if cmd == "crawl" {
		handle, err = client.Crawl(ctx, fs.Args(), options())
	} else {
		handle, err = client.MarkdownBulk(ctx, fs.Args(), options())
	}
	if err != nil {
		return err
	}
	return printJSON(stdout, handle)
}

func runStatus(ctx context.Context, client *skrape.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("job", flag.ContinueOnError)
	wait := fs.Bool("wait", false, "poll until the job reaches a terminal state")
	interval := fs.Duration("interval", 5*time.Second, "poll interval with -wait")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: job [-wait] [-interval 5s] ID")
	}
	if *interval <= 0 {
		return errors.New("job: -interval must be positive")
	}

	job, err := pollJob(ctx, client, fs.Arg(0), *wait, *interval)
	if err != nil {
		return err
	}
	return printJSON(stdout, job)
}

// pollJob fetches the job status, repeating every interval until the job
// is terminal when wait is set.
func pollJob(ctx context.Context, client *skrape.Client, id string, wait bool, interval time.Duration) (*skrape.JobStatus, error) {
	job, err := client.GetJob(ctx, id)
	if err != nil || !wait || job.Status.IsTerminal() {
		return job, err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		log.Info().Str("job_id", id).Str("status", string(job.Status)).Msg("waiting for job")

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}

		job, err = client.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
