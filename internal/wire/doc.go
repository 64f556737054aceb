// Package wire owns the Wayland wire format primitives.
//
// Ownership boundary:
// - message header encode/decode
// - argument encode/decode (int, uint, fixed, string, object, new_id, array, fd)
// - fd side-channel queueing
package wire
