package element

import (
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/dom"
)

// Registry maps tag names to definitions. The global registry is created at
// package init; scoped registries are attached to shadow roots with the
// ScopedRegistry option.
type Registry struct {
	scoped bool

	mu    sync.RWMutex
	byTag map[string]*Definition
	byDef map[*Definition]string
}

var global = NewRegistry(false)

// Global returns the process-wide registry.
func Global() *Registry { return global }

// NewRegistry creates an empty registry. A scoped registry resolves tags
// it does not hold through the global registry.
func NewRegistry(scoped bool) *Registry {
	return &Registry{
		scoped: scoped,
		byTag:  make(map[string]*Definition),
		byDef:  make(map[*Definition]string),
	}
}

// Scoped reports whether r is a scoped registry.
func (r *Registry) Scoped() bool { return r.scoped }

// Define registers def under tag. Registering a taken tag fails with
// ErrDuplicateRegistration and leaves the existing definition in place; a
// malformed tag fails with ErrInvalidTagName.
func (r *Registry) Define(tag string, def *Definition) error {
	if err := ValidateTagName(tag); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byTag[tag]; taken {
		return errors.New(errors.ErrDuplicateRegistration.Code).
			WithDetailf("<%s> is already defined in this registry", tag)
	}
	if prev, ok := r.byDef[def]; ok {
		return errors.New(errors.ErrDuplicateRegistration.Code).
			WithDetailf("definition is already registered as <%s>", prev)
	}
	r.byTag[tag] = def
	r.byDef[def] = tag
	return nil
}

// Get returns the definition registered under tag in r only.
func (r *Registry) Get(tag string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byTag[tag]
	return def, ok
}

// GetTagName returns the tag def is registered under in r.
func (r *Registry) GetTagName(def *Definition) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, ok := r.byDef[def]
	return tag, ok
}

// Resolve looks tag up in r and, for scoped registries, then in the global
// registry. An unknown tag yields ErrUnresolvedTag.
func (r *Registry) Resolve(tag string) (*Definition, error) {
	if def, ok := r.Get(tag); ok {
		return def, nil
	}
	if r.scoped && r != global {
		if def, ok := global.Get(tag); ok {
			return def, nil
		}
	}
	return nil, errors.New(errors.ErrUnresolvedTag.Code).WithDetailf("<%s> is not defined", tag)
}

// Tags returns the tags registered in r, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Lookup implements dom.CustomElementRegistry. It only consults r; the
// document falls back to its global registry itself.
func (r *Registry) Lookup(tag string) (dom.CustomElementDefinition, bool) {
	def, ok := r.Get(tag)
	if !ok {
		return nil, false
	}
	return def, true
}

var reservedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidateTagName checks that tag is a valid custom element name: a
// lowercase ASCII letter first, at least one hyphen, no uppercase letters,
// and not one of the reserved hyphenated SVG/MathML names.
func ValidateTagName(tag string) error {
	invalid := func(reason string) error {
		return errors.New(errors.ErrInvalidTagName.Code).WithDetailf("%q %s", tag, reason)
	}
	switch {
	case tag == "":
		return invalid("is empty")
	case tag[0] < 'a' || tag[0] > 'z':
		return invalid("must start with a lowercase ASCII letter")
	case !strings.Contains(tag, "-"):
		return invalid("must contain a hyphen")
	case reservedNames[tag]:
		return invalid("is reserved")
	}
	for _, r := range tag {
		switch {
		case r >= 'A' && r <= 'Z':
			return invalid("must not contain uppercase letters")
		case r == ' ' || r == '\t' || r == '\n' || r == '/' || r == '>' || r == '"' || r == '\'' || r == '=':
			return invalid("contains a forbidden character")
		}
	}
	return nil
}

var _ dom.CustomElementRegistry = (*Registry)(nil)
