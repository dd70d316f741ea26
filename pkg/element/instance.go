package element

import (
	"time"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/template"
)

// instance is the per-element state stored on the host node.
type instance struct {
	def  *Definition
	host *dom.Node

	// Live while connected.
	owner     *reactive.Owner
	view      *template.View
	ctx       *Context
	attrs     map[string]*AttrSignal
	props     map[string]propBinding
	getters   []string
	resetters []func()

	// Kept across reconnects.
	values    map[string]any
	sheets    []*dom.CSSStyleSheet
	internals *dom.ElementInternals
	pending   []func()
	setupErr  error
}

// propBinding links a host property to the signal of the current setup.
type propBinding struct {
	signal any
	get    func() any
	set    func(any)
}

func instanceOf(el *dom.Node) *instance {
	inst, _ := el.InstanceData().(*instance)
	return inst
}

// root is where the template is bound.
func (i *instance) root() *dom.Node {
	if sr := i.host.AttachedShadowRoot(); sr != nil {
		return sr
	}
	return i.host
}

func (i *instance) connect() {
	if i.owner != nil {
		return
	}
	pending := i.pending
	i.pending = nil
	for _, fn := range pending {
		i.guard("client-only callback", fn)
	}

	start := time.Now()
	i.owner = reactive.NewOwner(nil)
	i.attrs = make(map[string]*AttrSignal)
	i.props = make(map[string]propBinding)
	i.ctx = &Context{inst: i}
	i.setupErr = nil

	var tpl *template.Template
	reactive.WithOwner(i.owner, func() {
		reactive.Untracked(func() {
			i.guard("setup", func() { tpl = i.def.setup(i.ctx) })
		})
	})
	observer().SetupRan(i.host.Tag(), time.Since(start), i.setupErr)
	observer().Connected(i.host.Tag())
	if i.setupErr != nil || tpl == nil {
		return
	}

	view, err := template.Bind(i.root(), tpl, template.Options{
		Owner:  i.owner,
		Logger: i.def.logger,
		OnError: func(err error) {
			i.def.logger.Warn("element: binding error", "tag", i.host.Tag(), "error", err)
		},
	})
	if err != nil {
		i.def.logger.Error("element: bind failed", "tag", i.host.Tag(), "error", err)
		return
	}
	i.view = view
}

func (i *instance) disconnect() {
	if i.owner == nil {
		return
	}
	for name, p := range i.props {
		i.storeProperty(name, p.get())
	}
	for _, name := range i.getters {
		i.host.DeleteProperty(name)
	}
	if i.view != nil {
		i.view.Dispose()
		i.view = nil
	}
	i.owner.Dispose()
	i.owner = nil
	i.ctx.done = true
	i.ctx = nil
	i.attrs = nil
	i.props = nil
	i.getters = nil
	i.resetters = nil
	observer().Disconnected(i.host.Tag())
}

func (i *instance) attributeChanged(name, value string) {
	if a, ok := i.attrs[name]; ok {
		a.sig.Set(value)
	}
}

func (i *instance) formReset() {
	for _, fn := range i.resetters {
		i.guard("form reset", fn)
	}
}

// guard runs fn, logging a panic instead of propagating it. A setup panic
// is kept as the instance's setup error.
func (i *instance) guard(where string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err := errors.FromPanic(where, r)
			if where == "setup" {
				i.setupErr = err
			}
			i.def.logger.Error("element: recovered panic",
				"tag", i.host.Tag(),
				"callback", where,
				"error", err)
		}
	}()
	fn()
	return true
}

// property reads the stored value of a host property for the next setup.
func (i *instance) property(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

func (i *instance) storeProperty(name string, v any) {
	if i.values == nil {
		i.values = make(map[string]any)
	}
	i.values[name] = v
}
