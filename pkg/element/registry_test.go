package element

import (
	"testing"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/template"
)

func emptySetup(*Context) *template.Template { return nil }

func TestRegistryDuplicateKeepsFirst(t *testing.T) {
	reg := NewRegistry(false)
	first := Define(emptySetup)
	second := Define(emptySetup)

	if err := reg.Define("x-item", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := reg.Define("x-item", second)
	if !errors.Is(err, errors.ErrDuplicateRegistration) {
		t.Fatalf("expected E101, got %v", err)
	}
	if got, _ := reg.Get("x-item"); got != first {
		t.Error("expected x-item to still resolve to the first definition")
	}
	if _, ok := reg.GetTagName(second); ok {
		t.Error("expected rejected definition to have no tag name")
	}
}

func TestRegistrySameDefinitionTwice(t *testing.T) {
	reg := NewRegistry(false)
	def := Define(emptySetup)
	if err := reg.Define("x-one", def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Define("x-two", def); errors.Code(err) != "E101" {
		t.Errorf("expected E101, got %v", err)
	}
}

func TestValidateTagName(t *testing.T) {
	tests := []struct {
		tag   string
		valid bool
	}{
		{"my-element", true},
		{"x-1", true},
		{"a-b-c", true},
		{"", false},
		{"element", false},
		{"My-element", false},
		{"my-Element", false},
		{"1-element", false},
		{"-element", false},
		{"font-face", false},
		{"annotation-xml", false},
		{"my element-x", false},
	}
	for _, tt := range tests {
		err := ValidateTagName(tt.tag)
		if tt.valid && err != nil {
			t.Errorf("%q: expected valid, got %v", tt.tag, err)
		}
		if !tt.valid && !errors.Is(err, errors.ErrInvalidTagName) {
			t.Errorf("%q: expected E105, got %v", tt.tag, err)
		}
	}
}

func TestRegistryRejectsInvalidName(t *testing.T) {
	reg := NewRegistry(false)
	if err := reg.Define("Bad", Define(emptySetup)); errors.Code(err) != "E105" {
		t.Errorf("expected E105, got %v", err)
	}
	if len(reg.Tags()) != 0 {
		t.Errorf("expected empty registry, got %v", reg.Tags())
	}
}

func TestScopedResolution(t *testing.T) {
	scoped := NewRegistry(true)
	nested := Define(emptySetup)
	if err := scoped.Define("nested-element", nested); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def, err := scoped.Resolve("nested-element")
	if err != nil || def != nested {
		t.Errorf("expected nested definition, got %v, %v", def, err)
	}
	if tag, ok := scoped.GetTagName(nested); !ok || tag != "nested-element" {
		t.Errorf("expected nested-element, got %q", tag)
	}
	if _, ok := Global().Get("nested-element"); ok {
		t.Error("expected global registry to stay unaware of the scoped tag")
	}
	if _, err := Global().Resolve("nested-element"); !errors.Is(err, errors.ErrUnresolvedTag) {
		t.Errorf("expected E102 from global registry, got %v", err)
	}
}

func TestScopedFallsBackToGlobal(t *testing.T) {
	def, ok := Global().Get("x-global-fallback")
	if !ok {
		def = Define(emptySetup)
		if err := Global().Define("x-global-fallback", def); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	scoped := NewRegistry(true)
	got, err := scoped.Resolve("x-global-fallback")
	if err != nil || got != def {
		t.Errorf("expected global definition, got %v, %v", got, err)
	}

	plain := NewRegistry(false)
	if _, err := plain.Resolve("x-global-fallback"); errors.Code(err) != "E102" {
		t.Errorf("expected E102 from unscoped registry, got %v", err)
	}
}

func TestScopedRenames(t *testing.T) {
	def := Define(emptySetup)
	reg := NewRegistry(false)
	scoped := NewRegistry(true)
	_ = reg.Define("x-card", def)
	_ = scoped.Define("inner-card", def)

	if tag, _ := reg.GetTagName(def); tag != "x-card" {
		t.Errorf("expected x-card, got %q", tag)
	}
	if tag, _ := scoped.GetTagName(def); tag != "inner-card" {
		t.Errorf("expected inner-card, got %q", tag)
	}
}

func TestRegistryTagsSorted(t *testing.T) {
	reg := NewRegistry(false)
	for _, tag := range []string{"x-c", "x-a", "x-b"} {
		if err := reg.Define(tag, Define(emptySetup)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	tags := reg.Tags()
	want := []string{"x-a", "x-b", "x-c"}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tags)
		}
	}
}
