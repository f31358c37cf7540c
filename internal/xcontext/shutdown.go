package xcontext

import "context"

type shutdownInProgressKey struct{}

// SetShutdownInProgress marks the context as being in a shutdown state.
// Handlers use this to distinguish server-initiated shutdowns from
// ordinary client disconnects.
func SetShutdownInProgress(ctx context.Context, inProgress bool) context.Context {
	return context.WithValue(ctx, shutdownInProgressKey{}, inProgress)
}

func IsShutdownInProgress(ctx context.Context) bool {
	inProgress, ok := ctx.Value(shutdownInProgressKey{}).(bool)
	return ok && inProgress
}
