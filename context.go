package dojoauth

import "context"

type storeContextKey struct{}

// WithStore returns a context carrying st, for handlers that receive the
// store through the request rather than a constructor.
func WithStore(ctx context.Context, st *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, st)
}

// StoreFromContext returns the store attached by WithStore.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	st, ok := ctx.Value(storeContextKey{}).(*Store)
	return st, ok && st != nil
}
