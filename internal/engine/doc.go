// Package engine implements the backlog propagation simulation.
//
// The engine is a pure function from a model.Request to a model.Response:
// it walks the simulation window one calendar day at a time and threads a
// single in-memory item list through each day's stages, in a fixed order:
//
//  1. Age items (days_in_backlog++, priority aging)
//  2. Apply natural decay (probabilistic spontaneous resolution)
//  3. Admit new items from the day's demand
//  4. Flag SLA breaches
//  5. Resolve items against the day's capacity
//  6. Handle overflow above the backlog ceiling
//  7. Record the daily snapshot
//
// Days without a capacity entry are skipped entirely: the loop advances
// without running any stage or producing a snapshot for that date.
//
// DETERMINISM:
//
// All randomness (decay draws, complexity sampling, effort sampling) comes
// from one *rand.Rand constructed per run from the request seed. There is
// no package-level PRNG state, so concurrent runs with distinct seeds are
// independent and a repeated seed reproduces a run exactly. Map-shaped
// inputs are iterated in a fixed order so the draw sequence is stable.
//
// The simulation itself is strictly sequential: each day's state depends on
// the previous day's mutated item list, and each stage consumes the output
// of the one before it. The only suspension point is a per-day context
// check; cancellation aborts the run with no partial results.
package engine
