// Package engine drives the tick loop.
//
// One tick applies queued commands (catalog reloads, parameter updates,
// clicks), advances every bubble, tops the population back up and then
// hands a [Frame] to metrics and observers, always in that order. State is
// only mutated inside a tick or while the loop is stopped; other goroutines
// talk to the engine through the Queue* methods.
package engine
