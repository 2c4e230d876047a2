// Package store implements a path-addressed state store with change
// notification.
//
// A Store owns exactly one instance of an application-defined state model
// (any Go struct, arbitrarily nested) and is its sole mutation authority.
// Fields are addressed by dot-delimited paths ("user.profile.name",
// "todos.0.done") resolved against a per-type accessor table built once
// with reflection and cached.
//
// ARCHITECTURE:
//
// Mutation flow:
//  1. Caller requests a path-qualified update (Update, AddToList,
//     AddToDict, Replace)
//  2. The resolver walks the path and locates the target slot
//  3. The value is coerced to the declared type and assigned; containers
//     along the spine are copied, never mutated in place
//  4. Notifications are published on the bus, keyed by the exact path
//
// Every successful mutation emits two parallel notifications: a detailed
// one carrying the payload (old/new value, item/index, or key/value) and a
// payload-free refresh signal for handlers that only re-render. A third,
// fixed-topic mutation record feeds journaling observers.
//
// Either a mutation fully succeeds (value assigned, notifications
// published) or fully fails (no assignment, nothing published). There is
// no retry, no fallback, no partial success.
//
// The store is single-threaded by contract: mutations and notification
// delivery are expected to happen on the one goroutine that owns the
// application's event loop. Copy-then-assign for containers is the only
// concurrency-adjacent safeguard: observers that retained a reference to
// an old slice or map never see it change underneath them.
package store
