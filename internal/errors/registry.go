package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	"E101": {
		Category:   CategoryRegistry,
		Message:    "Duplicate registration",
		Suggestion: "Pick another tag name or define the component in a scoped registry.",
	},
	"E102": {
		Category:   CategoryRegistry,
		Message:    "Unresolved tag",
		Suggestion: "Define the tag in the shadow root's scoped registry or in the global registry.",
	},
	"E103": {
		Category:   CategoryRuntime,
		Message:    "Reactive recursion limit exceeded",
		Suggestion: "An effect writes a signal it also reads. Guard the write or move it out of the effect.",
	},
	"E104": {
		Category: CategoryRender,
		Message:  "Client-only callback in server context",
	},
	"E105": {
		Category:   CategoryRegistry,
		Message:    "Invalid custom element name",
		Suggestion: "Custom element names are lowercase, start with a letter and contain a hyphen.",
	},
	"E106": {
		Category: CategoryTemplate,
		Message:  "Template value count does not match interpolation markers",
	},
	"E107": {
		Category: CategoryRuntime,
		Message:  "Recovered panic",
	},
	"E108": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E109": {
		Category: CategoryProtocol,
		Message:  "Malformed live message",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
