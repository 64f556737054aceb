// Package client owns the Wayland client runtime.
//
// Ownership boundary:
// - socket resolution and connection (Connect, WAYLAND_SOCKET adoption)
// - client object map, id allocation and zombie tracking
// - typed proxies for the supported interfaces and their requests
// - typed listener structures (one func field per event slot)
// - blocking dispatch and roundtrip
//
// A Conn and every proxy created on it are not safe for concurrent use.
// Events are delivered synchronously on the goroutine calling Dispatch or
// Roundtrip, in wire order.
package client
