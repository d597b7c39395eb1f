// Package collision keeps bubbles apart.
//
// [Resolver.Resolve] runs one bounded relaxation pass over the live bubbles
// using a uniform spatial grid for neighbour queries, so a pass costs
// roughly O(n). [Resolver.FindPlacement] picks a spawn position with a
// coarse grid search over the canvas. Neither ever fails: when the attempt
// budget runs out the best effort position is kept and counted in
// [Report.Unresolved].
package collision
