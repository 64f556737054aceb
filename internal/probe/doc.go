// Package probe connects to the compositor, prints every registry global as
// a uniform event tuple and optionally inspects seats, outputs and shm.
package probe
