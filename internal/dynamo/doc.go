// Package dynamo provides the shared primitives of the bubble field.
//
// The package defines the types every stage of a frame agrees on:
//
//   - [Bubble]: the live entity animated on the canvas
//   - [BubbleView]: read-only snapshot handed to renderers
//   - [Phase]: spawning, steady or fading lifecycle phase
//   - [Params]: flat set of named tuning options with partial updates
//   - [SineTable]: precomputed sine lookup used by wind and breathing
//
// # Example
//
//	params := dynamo.DefaultParams()
//	if err := params.Apply(map[string]float64{"maxBubbles": 20}); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Bubbles are owned by a single writer (the lifecycle manager) and are only
// mutated from inside a tick. Params values are copied into each component.
package dynamo
