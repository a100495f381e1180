package logging

import "context"

type correlationKey struct{}

// WithCorrelationID returns a context carrying id. Handlers include the id
// in their log lines so that all output caused by one event can be grouped.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "-".
func CorrelationID(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
			return id
		}
	}
	return "-"
}
