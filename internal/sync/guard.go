package sync

import "context"

type guardKey struct{}

// Begin returns a context marked as carrying an in-flight propagation.
// Everything called with the returned context, including the notify path of
// the target backend, observes the mark through InFlight.
//
// The mark is scoped to the derived context: it disappears when the
// propagation call frame returns, so there is no separate release step that
// a mid-propagation failure could skip, and concurrent unrelated contexts
// never observe each other's flag.
func Begin(ctx context.Context) context.Context {
	return context.WithValue(ctx, guardKey{}, true)
}

// InFlight reports whether a propagation is already running in this
// execution context.
func InFlight(ctx context.Context) bool {
	v, _ := ctx.Value(guardKey{}).(bool)
	return v
}
