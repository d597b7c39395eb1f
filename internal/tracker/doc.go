// Package tracker schedules which content item a new bubble shows.
//
// A [Tracker] owns two pieces of state: the displayed set (content currently
// on screen, unique per content id) and the rotation cycle (content already
// picked since the last reset). [Tracker.SelectNextContent] draws among items
// that are neither displayed nor already in the cycle, weighting each
// candidate by recency, popularity, type balance and cycle membership, and
// forces a rotation when nothing eligible remains.
//
// State transitions are pure functions on value types (rotation, history,
// exposure); the tracker swaps in the returned value. A Tracker is not safe
// for concurrent use; it is driven from a single tick loop.
package tracker
