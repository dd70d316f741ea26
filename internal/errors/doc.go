// Package errors provides the coded error taxonomy used across the module.
//
// Every failure the runtime reports to a caller is an *Error carrying a stable
// code (e.g. "E101") that maps to a registered template:
//
//   - E101 DuplicateRegistration: a tag name is already taken in a registry scope
//   - E102 UnresolvedTag: a template references a tag no registry knows
//   - E103 ReactiveRecursionLimit: effects kept retriggering within one flush
//   - E104 ClientOnlyViolation: client-only logic reached in server context
//   - E105 InvalidTagName: a custom element name is not valid
//   - E106 TemplateArity: interpolation markers and values disagree
//   - E107 RecoveredPanic: user code panicked inside a reactive boundary
//   - E108 InvalidConfig: configuration failed validation
//   - E109 LiveProtocol: a live session received a malformed message
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail(`tag "my-element" is already defined`).
//	    WithSuggestion("Use a scoped registry to rename the component")
//
//	if errors.Is(err, errors.ErrDuplicateRegistration) { ... }
//	fmt.Println(err.(*errors.Error).Format())
//
// Codes compare by value, so a freshly constructed *Error matches the package
// sentinel with the same code through the standard errors.Is.
package errors
