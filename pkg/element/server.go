package element

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/render"
	"github.com/vango-dev/elements/pkg/ssr"
)

const tracerName = "github.com/vango-dev/elements/pkg/element"

// resolver adapts a Registry to dom.CustomElementRegistry with the global
// fallback of Resolve.
type resolver struct{ reg *Registry }

func (r resolver) Lookup(tag string) (dom.CustomElementDefinition, bool) {
	def, err := r.reg.Resolve(tag)
	if err != nil {
		return nil, false
	}
	return def, true
}

// RenderServer renders one element of def, registered as tag, in a fresh
// server-context document and returns its inner HTML: the declarative
// shadow root followed by any light DOM children setup added.
func (d *Definition) RenderServer(ctx context.Context, tag string) (string, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "element.render_server",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("element.tag", tag)),
	)
	defer span.End()

	if err := ValidateTagName(tag); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	doc := dom.NewDocument(
		dom.WithContext(ssr.Server),
		dom.WithRegistry(resolver{reg: d.Registry()}),
		dom.WithLogger(d.logger),
	)
	el := doc.CreateElement(tag)
	if el.Definition() == nil {
		// Not registered under tag yet: resolve tag to d for this render.
		doc.SetRegistry(staticRegistry{tag: tag, def: d, next: doc.Registry()})
		doc.Upgrade(el)
	}
	doc.Body().AppendChild(el)

	if inst := instanceOf(el); inst != nil && inst.setupErr != nil {
		span.RecordError(inst.setupErr)
		span.SetStatus(codes.Error, inst.setupErr.Error())
		return "", inst.setupErr
	}
	html := render.InnerHTML(el)
	span.SetAttributes(attribute.Int("element.html_bytes", len(html)))
	span.SetStatus(codes.Ok, "")
	return html, nil
}

func (d *Definition) renderServer(tag string) (string, error) {
	return d.RenderServer(context.Background(), tag)
}

type staticRegistry struct {
	tag  string
	def  *Definition
	next dom.CustomElementRegistry
}

func (s staticRegistry) Lookup(tag string) (dom.CustomElementDefinition, bool) {
	if tag == s.tag {
		return s.def, true
	}
	return s.next.Lookup(tag)
}
