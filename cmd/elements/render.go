package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/elements/internal/config"
	"github.com/vango-dev/elements/internal/demo"
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/element"
	"github.com/vango-dev/elements/pkg/publish"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/render"
	"github.com/vango-dev/elements/pkg/ssr"
)

type renderOptions struct {
	page     string
	name     string
	out      string
	bucket   string
	snapshot bool
}

func renderCmd(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo page in server context and publish it",
		Long: `Render defines the demo components in server context, merges each
server-generated definition into the page as declarative shadow DOM and
publishes the result.

Output goes to publish.dir, or to S3 when publish.s3Bucket (or --bucket)
is set. Every definition is also published on its own under elements/.

Examples:
  elements render
  elements render --page site/index.html --out public
  elements render --bucket my-site --snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.out != "" {
				a.cfg.Publish.Dir = opts.out
				a.cfg.Publish.S3Bucket = ""
			}
			if opts.bucket != "" {
				a.cfg.Publish.S3Bucket = opts.bucket
			}
			pub, where, err := publisherFor(cmd.Context(), a.cfg.Publish)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), a.cfg, pub, where, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.page, "page", "p", "", "Page HTML to merge into (default: built-in mock page)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "index.html", "Published name of the merged page")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output directory (overrides publish.dir and publish.s3Bucket)")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "S3 bucket (overrides publish.s3Bucket)")
	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "Also publish a client-context snapshot of the live page")

	return cmd
}

// publisherFor picks S3 when a bucket is configured, the directory
// otherwise, and describes the destination for status output.
func publisherFor(ctx context.Context, cfg config.PublishConfig) (publish.Publisher, string, error) {
	if cfg.S3Bucket != "" {
		client, err := publish.NewS3Client(ctx, cfg.S3Region)
		if err != nil {
			return nil, "", err
		}
		pub := publish.NewS3Publisher(client, cfg.S3Bucket, cfg.S3Prefix)
		return pub, "s3://" + cfg.S3Bucket + "/" + cfg.S3Prefix, nil
	}
	return publish.NewDirPublisher(cfg.Dir), cfg.Dir, nil
}

func runRender(ctx context.Context, cfg *config.Config, pub publish.Publisher, where string, opts renderOptions) error {
	start := time.Now()

	page := demo.MockPage
	if opts.page != "" {
		data, err := os.ReadFile(opts.page)
		if err != nil {
			return err
		}
		page = string(data)
	}

	defs, err := serverDefinitions()
	if err != nil {
		return err
	}
	merged, err := defs.Merge(page)
	if err != nil {
		return err
	}

	if err := pub.Publish(ctx, opts.name, []byte(merged)); err != nil {
		return fmt.Errorf("publish %s: %w", opts.name, err)
	}
	success("Published %s", opts.name)

	for _, d := range defs.Definitions() {
		name := "elements/" + d.Tag + ".html"
		if err := pub.Publish(ctx, name, []byte(d.HTML)); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
		info("%s", name)
	}

	if opts.snapshot {
		html, err := snapshot(cfg.Render.Pretty)
		if err != nil {
			return err
		}
		if err := pub.Publish(ctx, "snapshot.html", html); err != nil {
			return fmt.Errorf("publish snapshot.html: %w", err)
		}
		info("snapshot.html")
	}

	success("Rendered %d definitions to %s in %s", len(defs.Definitions()), where, time.Since(start).Round(time.Millisecond))
	return nil
}

// serverDefinitions defines the demo components in server context and
// returns what their definitions emitted.
func serverDefinitions() (*publish.Collector, error) {
	prev := ssr.SetDefault(ssr.Server)
	defer ssr.SetDefault(prev)

	c, stop := publish.Collect()
	defer stop()

	if _, err := demo.Register(element.NewRegistry(false)); err != nil {
		return nil, err
	}
	if len(c.Definitions()) == 0 {
		warn("no definitions were rendered")
	}
	return c, nil
}

// snapshot builds the live demo page in client context and serializes it
// with declarative shadow roots, as a browser would see it after startup.
func snapshot(pretty bool) ([]byte, error) {
	defer reactive.ReleaseContext()

	reg := element.NewRegistry(false)
	if _, err := demo.Register(reg); err != nil {
		return nil, err
	}
	doc := dom.NewDocument(dom.WithContext(ssr.Client), dom.WithRegistry(reg))

	var buildErr error
	doc.Task(func() { buildErr = demo.BuildPage(doc) })
	if buildErr != nil {
		return nil, buildErr
	}

	var buf bytes.Buffer
	r := render.NewRenderer(render.RendererConfig{Pretty: pretty, DeclarativeShadow: true})
	if err := r.RenderPage(&buf, render.PageData{Document: doc, Title: "elements snapshot"}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
