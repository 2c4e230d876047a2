// Package journal provides a durable, append-only log of store mutations
// backed by SQLite.
//
// A Journal attaches to a store's bus and records every mutation
// published on the fixed mutation topic: one row per mutation, stamped
// with a monotonic seq from a logical clock (never wall-clock ordering).
// Replaying a journal in seq order against a fresh store reproduces the
// final state deterministically, emitting the same notifications the
// live mutations did.
//
// Two replay surfaces exist:
//   - Replay feeds rows through a typed store's ApplyJSONMutation, for
//     applications that have the state model type in hand.
//   - ReplayDocument folds rows into a plain JSON document, for tooling
//     that inspects a journal without knowing the model type.
//
// The database uses WAL mode with a single writer connection; the
// journal is an observer and never mutates the store it watches.
package journal
