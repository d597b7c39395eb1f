// Package lifecycle owns the live bubble collection: spawning bubbles for
// tracker selections, stepping them each frame and retiring them once their
// lifespan runs out. A Manager is single-writer; call it from one goroutine.
package lifecycle
