// Package dom is the in-memory host environment that custom elements run
// against: documents, elements, text and comment nodes, attributes,
// properties, events, shadow roots, element internals and the platform-level
// custom element hook table.
//
// It models the interface boundary a browser offers to a custom element
// library, not a browser: there is no layout, no CSS engine and no script
// execution. Elements whose tag resolves to a CustomElementDefinition are
// upgraded when created and receive constructed, connected, disconnected and
// attribute-changed callbacks with platform timing.
//
// Every host entry point that may run user code (event dispatch, external
// attribute and property writes) executes as one reactive task through
// reactive.Batch, so effects observe a consistent state when it returns.
//
// Documents optionally record a mutation log (see Mutation) that live
// sessions stream to remote clients and tests use to assert that nodes were
// moved rather than recreated.
package dom
