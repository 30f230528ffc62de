package jobboard

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteGuard wires the identity resolver and the route access policy into
// a go-router middleware. Every page request passes through it before any
// handler runs.
type RouteGuard struct {
	resolver       IdentityResolver
	policy         *RouteAccessPolicy
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
	ErrorHandler   func(c router.Context, err error) error
}

// NewRouteGuard creates the page-level gate middleware
func NewRouteGuard(resolver IdentityResolver, policy *RouteAccessPolicy, cfg Config) (*RouteGuard, error) {
	if resolver == nil {
		return nil, errors.New("route guard requires an identity resolver", errors.CategoryBadInput)
	}

	if policy == nil {
		policy = NewRouteAccessPolicyFromConfig(cfg)
	}

	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	g := &RouteGuard{
		resolver:       resolver,
		policy:         policy,
		cfg:            cfg,
		cookieDuration: cookieDuration,
		Logger:         defLogger{},
	}

	g.ErrorHandler = g.defaultErrHandler

	return g, nil
}

// GetCookieDuration returns how long session cookies live
func (g RouteGuard) GetCookieDuration() time.Duration {
	return g.cookieDuration
}

// Middleware evaluates the route access policy for every request. The
// resolved identity, when present, is stored in both the request context
// and the router locals.
func (g *RouteGuard) Middleware() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			identity := g.resolveIdentity(c)

			decision := g.policy.CheckRouteAccess(identity, c.OriginalURL())
			if !decision.Allowed {
				return g.redirect(c, decision.RedirectTo)
			}

			if identity != nil {
				c.SetContext(WithIdentity(c.Context(), identity))
				c.Locals("identity", identity)
			}

			return hf(c)
		}
	}
}

// resolveIdentity reads the session cookie and resolves it. Any failure
// yields a nil identity, the policy treats the request as signed out.
func (g *RouteGuard) resolveIdentity(c router.Context) *Identity {
	token := c.Cookies(g.cfg.GetContextKey())
	if token == "" {
		return nil
	}

	identity, err := g.resolver.Resolve(c.Context(), token)
	if err != nil {
		if !IsUnauthenticated(err) {
			g.Logger.Error("route guard failed to resolve identity", "error", err)
		}
		return nil
	}

	return identity
}

// StartSession stores the session token in the board cookie
func (g *RouteGuard) StartSession(c router.Context, token string) {
	c.Cookie(&router.Cookie{
		Name:     g.cfg.GetContextKey(),
		Value:    token,
		Expires:  time.Now().Add(g.cookieDuration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// EndSession expires the board cookie
func (g *RouteGuard) EndSession(c router.Context) {
	c.Cookie(&router.Cookie{
		Name:     g.cfg.GetContextKey(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (g *RouteGuard) redirect(c router.Context, target string) error {
	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(target, statusCode)
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	g.Logger.Info(
		"Route guard error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return g.redirect(c, g.policy.loginPath)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}
