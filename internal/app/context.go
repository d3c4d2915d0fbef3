package app

import "context"

// contextKey is used to store the App in a command context.
type contextKey struct{}

var appContextKey = contextKey{}

// FromContext retrieves the App from a context, or nil.
func FromContext(ctx context.Context) *App {
	if a, ok := ctx.Value(appContextKey).(*App); ok {
		return a
	}
	return nil
}

// IntoContext stores the App in a context.
func IntoContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, appContextKey, a)
}
