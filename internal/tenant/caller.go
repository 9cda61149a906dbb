package tenant

import "context"

type CallerKind int

const (
	CallerUser CallerKind = iota
	// CallerWorker is the trusted OCR engine authenticated by shared
	// secret. It is a privileged internal service, not a tenant actor:
	// case-scope checks do not apply to it.
	CallerWorker
)

// Caller is the tagged variant behind the result/fail endpoints, which
// accept either an authenticated user or the worker credential. Access
// decisions branch explicitly on Kind.
type Caller struct {
	Kind    CallerKind
	Subject *Subject
}

func UserCaller(s *Subject) Caller {
	return Caller{Kind: CallerUser, Subject: s}
}

func WorkerCaller() Caller {
	return Caller{Kind: CallerWorker}
}

func (c Caller) IsWorker() bool {
	return c.Kind == CallerWorker
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext returns the request caller. The second result is false
// when no authentication middleware ran.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}
