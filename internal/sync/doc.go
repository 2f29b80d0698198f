// Package sync keeps the SQLite and file backends consistent in real time
// and rebuilds the file backend from the SQLite master at process start.
//
// Real-time propagation is synchronous and best-effort: a committed
// mutation on one backend is replayed on its complement before the caller
// returns, and any replay failure is logged and swallowed. A failed replica
// write never rolls back or blocks the already-committed source write;
// durability of consistency comes from the bootstrap reconciliation at the
// next start, not from in-place retry.
//
// Re-entrancy is suppressed with a flag carried on the context: the first
// replay marks the context, and the reciprocal observer on the target
// backend sees the mark and does nothing, so a single mutation can never
// ping-pong between the two stores.
package sync
