package logger

import "context"

type contextKey struct{}

// Fields are attached to every record logged with the context
type Fields struct {
	RequestID string
	UserID    string
}

// WithFields merges fields into the context. Empty values keep the existing ones.
func WithFields(ctx context.Context, fields Fields) context.Context {
	merged := FieldsFrom(ctx)
	if fields.RequestID != "" {
		merged.RequestID = fields.RequestID
	}
	if fields.UserID != "" {
		merged.UserID = fields.UserID
	}
	return context.WithValue(ctx, contextKey{}, merged)
}

// FieldsFrom returns the fields stored in ctx
func FieldsFrom(ctx context.Context) Fields {
	if f, ok := ctx.Value(contextKey{}).(Fields); ok {
		return f
	}
	return Fields{}
}
