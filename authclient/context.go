package authclient

import "context"

type sourceKey struct{}

// WithSource records the network address a request originated from. Backends
// that throttle by source read it with [SourceFromContext].
func WithSource(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, sourceKey{}, addr)
}

// SourceFromContext returns the address stored by [WithSource], or "".
func SourceFromContext(ctx context.Context) string {
	addr, _ := ctx.Value(sourceKey{}).(string)
	return addr
}
