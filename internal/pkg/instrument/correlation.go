package instrument

import "context"

type correlationIDContextKey struct{}

// SetCorrelationID stores the correlation ID on the context so that log
// records and outbound messages can carry it.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, cID)
}

// GetCorrelationID returns the correlation ID stored on the context, or an
// empty string when none was set.
func GetCorrelationID(ctx context.Context) string {
	if cID, ok := ctx.Value(correlationIDContextKey{}).(string); ok {
		return cID
	}

	return ""
}
