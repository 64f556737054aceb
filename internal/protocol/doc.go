// Package protocol owns the static interface descriptors of the supported
// Wayland core interfaces.
//
// Ownership boundary:
// - interface names, versions and teardown kinds
// - request/event schemas (ordered, typed argument lists)
// - schema validation entry points
package protocol
