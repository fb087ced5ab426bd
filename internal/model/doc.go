// Package model defines the data types for backlog propagation simulations.
//
// The types mirror the engine's wire shape: a Request carries the simulation
// window, a Profile of propagation rules, initial backlog items, and per-day
// capacity/demand descriptors; a Response carries per-day Snapshots, the
// final item list, and a run Summary.
//
// Enumerated fields (Priority, Complexity, ItemStatus, OverflowStrategy) are
// closed string types. Status changes go through BacklogItem.Transition,
// which rejects moves out of terminal statuses and moves back to pending.
//
// All dates are calendar days (Date), not instants. The simulation is
// day-grained: two items created on the same day are the same age.
package model
