// Package store provides SQLite-backed durable storage for simulation runs.
//
// Each completed simulation is persisted as one run row plus its daily
// snapshots and final backlog items, written atomically in a single
// transaction. Snapshot and item rows carry a few queryable columns next to
// a canonical-JSON detail payload, so reporting can filter in SQL while the
// full response stays reconstructible byte for byte.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: snapshots and items cascade with their run
//
// Run IDs are UUIDv7, so lexicographic ID order matches creation order.
package store
