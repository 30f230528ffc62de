package jobboard

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// IdentityContext resolves session tokens into stored identities. It is
// read-only: a missing, expired, or unparsable token resolves to
// ErrUnauthenticated, never to a partially trusted identity.
type IdentityContext struct {
	tokens     TokenService
	identities Identities
	logger     Logger
}

var _ IdentityResolver = (*IdentityContext)(nil)

// IdentityContextOption customizes the resolver
type IdentityContextOption func(*IdentityContext)

// WithIdentityContextLogger overrides the default logger
func WithIdentityContextLogger(logger Logger) IdentityContextOption {
	return func(ic *IdentityContext) {
		if logger != nil {
			ic.logger = logger
		}
	}
}

// NewIdentityContext creates a resolver backed by the given token service
// and identities repository
func NewIdentityContext(tokens TokenService, identities Identities, opts ...IdentityContextOption) *IdentityContext {
	ic := &IdentityContext{
		tokens:     tokens,
		identities: identities,
		logger:     defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ic)
		}
	}
	return ic
}

// Resolve validates the session token and loads the identity it names.
// Every failure path collapses into ErrUnauthenticated so callers cannot
// distinguish a forged token from a deleted account.
func (ic *IdentityContext) Resolve(ctx context.Context, sessionToken string) (*Identity, error) {
	if sessionToken == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := ic.tokens.Validate(sessionToken)
	if err != nil {
		ic.logger.Debug("identity resolve rejected token", "error", err)
		return nil, ErrUnauthenticated
	}

	uid, err := uuid.Parse(claims.UserID())
	if err != nil {
		ic.logger.Warn("identity resolve got claims with invalid subject", "subject", claims.UserID())
		return nil, ErrUnauthenticated
	}

	identity, err := ic.identities.GetByID(ctx, uid.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load identity for session")
	}

	identity.EnsureRole()

	return identity, nil
}

// SessionFromToken validates a token and exposes it as a Session
func (ic *IdentityContext) SessionFromToken(raw string) (Session, error) {
	claims, err := ic.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}
	return sessionFromAuthClaims(claims)
}
