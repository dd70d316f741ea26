package element

import (
	"log/slog"
	"slices"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/ssr"
	"github.com/vango-dev/elements/pkg/template"
)

// SetupFunc builds an element's template. It runs once per connect.
type SetupFunc func(c *Context) *template.Template

// Definition is a component definition. It is immutable after Define.
type Definition struct {
	setup          SetupFunc
	observed       []string
	formAssociated bool
	attachShadow   bool
	mode           dom.ShadowRootMode
	scoped         *Registry
	registry       *Registry
	logger         *slog.Logger
}

// Option configures a Definition.
type Option func(*Definition)

// ObservedAttributes lists the attributes whose changes reach the
// element's attribute signals.
func ObservedAttributes(names ...string) Option {
	return func(d *Definition) { d.observed = append(d.observed, names...) }
}

// FormAssociated makes the element a form control with ElementInternals.
func FormAssociated() Option {
	return func(d *Definition) { d.formAssociated = true }
}

// ShadowRoot sets the mode of the element's shadow root. Default open.
func ShadowRoot(mode dom.ShadowRootMode) Option {
	return func(d *Definition) { d.mode = mode }
}

// ScopedRegistry attaches reg to the element's shadow root, so tags inside
// the template resolve through reg before the global registry.
func ScopedRegistry(reg *Registry) Option {
	return func(d *Definition) { d.scoped = reg }
}

// AttachShadow controls whether a shadow root is attached. With false the
// template is bound into the element's light DOM.
func AttachShadow(on bool) Option {
	return func(d *Definition) { d.attachShadow = on }
}

// WithLogger sets the logger for setup and callback failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Definition) { d.logger = l }
}

// Define creates a definition from a setup function.
func Define(setup SetupFunc, opts ...Option) *Definition {
	d := &Definition{
		setup:        setup,
		attachShadow: true,
		mode:         dom.ShadowOpen,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.observed = slices.Clip(d.observed)
	return d
}

// Register sets the registry Define registers into. It returns d.
func (d *Definition) Register(reg *Registry) *Definition {
	d.registry = reg
	return d
}

// Registry returns the registry Define registers into.
func (d *Definition) Registry() *Registry {
	if d.registry == nil {
		return global
	}
	return d.registry
}

// Define registers d under tag. In server context the definition is also
// rendered once and the result handed to the server define hooks.
func (d *Definition) Define(tag string) error {
	reg := d.Registry()
	if err := reg.Define(tag, d); err != nil {
		return err
	}
	d.logger.Debug("element: defined", "tag", tag, "scoped", reg.Scoped())

	if ssr.Default().IsServer() {
		html, err := d.renderServer(tag)
		if err != nil {
			d.logger.Error("element: server render failed", "tag", tag, "error", err)
			return nil
		}
		ssr.EmitServerDefine(tag, html)
	}
	return nil
}

// ObservedAttributes returns the observed attribute names.
func (d *Definition) ObservedAttributes() []string { return d.observed }

// FormAssociated reports whether elements get ElementInternals.
func (d *Definition) FormAssociated() bool { return d.formAssociated }

// Constructed allocates the element's instance state and attaches its
// shadow root. Setup waits for the first connect.
func (d *Definition) Constructed(el *dom.Node) {
	inst := &instance{def: d, host: el}
	el.SetInstanceData(inst)
	if !d.attachShadow {
		return
	}
	init := dom.ShadowRootInit{Mode: d.mode}
	if d.scoped != nil {
		init.Registry = d.scoped
	}
	if _, err := el.AttachShadow(init); err != nil {
		d.logger.Warn("element: attach shadow failed", "tag", el.Tag(), "error", err)
	}
}

// Connected runs pending client-only callbacks and then setup.
func (d *Definition) Connected(el *dom.Node) {
	inst := instanceOf(el)
	if inst == nil {
		return
	}
	inst.connect()
}

// Disconnected tears down every effect setup created.
func (d *Definition) Disconnected(el *dom.Node) {
	if inst := instanceOf(el); inst != nil {
		inst.disconnect()
	}
}

// AttributeChanged forwards an observed attribute change to its signal.
func (d *Definition) AttributeChanged(el *dom.Node, name, _, value string) {
	if inst := instanceOf(el); inst != nil {
		inst.attributeChanged(name, value)
	}
}

// FormReset runs the reset handlers registered with Context.OnFormReset.
func (d *Definition) FormReset(el *dom.Node) {
	if inst := instanceOf(el); inst != nil {
		inst.formReset()
	}
}

var (
	_ dom.CustomElementDefinition = (*Definition)(nil)
	_ dom.FormResetter            = (*Definition)(nil)
)
