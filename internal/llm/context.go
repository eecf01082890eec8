package llm

import "context"

type callKey struct{}

// callInfo labels a generation call for logs, spans and stored events.
type callInfo struct {
	purpose string
	session string
}

func infoFrom(ctx context.Context) callInfo {
	if v, ok := ctx.Value(callKey{}).(callInfo); ok {
		return v
	}
	return callInfo{}
}

// WithPurpose tags the context with what the call is for, e.g. "quiz-question".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	info := infoFrom(ctx)
	info.purpose = purpose
	return context.WithValue(ctx, callKey{}, info)
}

// WithSession tags the context with the practice session the call belongs to.
func WithSession(ctx context.Context, id string) context.Context {
	info := infoFrom(ctx)
	info.session = id
	return context.WithValue(ctx, callKey{}, info)
}

// PurposeFrom returns the purpose label, or "unknown" when none was set.
func PurposeFrom(ctx context.Context) string {
	if p := infoFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// SessionFrom returns the session label, or "" outside a practice session.
func SessionFrom(ctx context.Context) string {
	return infoFrom(ctx).session
}
