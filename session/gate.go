package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Decision is the per-request authentication verdict handed to downstream
// handlers. It is recomputed on every request and never cached. Err is set
// only when evaluation itself failed, which is distinct from the routine
// unauthenticated outcomes.
type Decision struct {
	Session       *Session
	Identity      *Identity
	Authenticated bool
	Err           error
}

type decisionContextKey struct{}

// WithDecision attaches a decision to the request context.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, d)
}

// DecisionFromContext extracts the decision placed by the gate. A missing
// decision reads as unauthenticated.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(Decision)
	return d, ok
}

// Gate evaluates a request's transport credential into a Decision. It only
// annotates: it never rejects a request itself, so unauthenticated traffic
// still reaches public routes and each consumer enforces its own policy.
type Gate struct {
	logger zerolog.Logger
}

// NewGate creates a gate logging through the given logger. The logger is
// injected rather than taken from the global so tests can count entries.
func NewGate(logger zerolog.Logger) *Gate {
	return &Gate{logger: logger}
}

// Evaluate turns a raw credential payload into a Decision. The returned
// clear flag instructs the transport to drop the client's stale cookie.
//
// An empty payload means no credential: all-absent decision, no side
// effect. A malformed payload is logged and cleared. A well-formed but
// invalid session is cleared silently, since expiry is routine. Evaluation
// never propagates a failure: panics are recovered into a fail-closed
// decision with Err set.
func (g *Gate) Evaluate(raw string) (decision Decision, clear bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("session gate: %v", r)
			g.logger.Error().Err(err).Msg("session evaluation failed")
			decision = Decision{Err: err}
			clear = true
		}
	}()

	if raw == "" {
		return Decision{}, false
	}

	sess, err := Parse(raw)
	if err != nil {
		g.logger.Warn().Err(err).Msg("failed to parse session cookie")
		return Decision{}, true
	}

	if !IsValid(sess) {
		return Decision{}, true
	}

	identity := sess.Identity
	return Decision{
		Session:       sess,
		Identity:      &identity,
		Authenticated: true,
	}, false
}
