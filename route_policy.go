package jobboard

import "strings"

// Decision is the outcome of the page-level access gate
type Decision struct {
	Allowed    bool
	RedirectTo string
}

func allowDecision() Decision {
	return Decision{Allowed: true}
}

func redirectDecision(path string) Decision {
	return Decision{RedirectTo: path}
}

// RouteAccessPolicy gates page requests: unauthenticated visitors are sent
// to sign-in with a validated return path, signed-in visitors are kept out
// of public-only pages, onboarding is enforced in both directions, and
// role-restricted prefixes fail closed on any mismatch or unknown role.
type RouteAccessPolicy struct {
	loginPath         string
	dashboardPath     string
	onboardingPath    string
	protectedPrefixes []string
	publicOnlyPaths   []string
	exemptPaths       []string
	rolePrefixes      map[string]Role
	logger            Logger
}

// RoutePolicyOption customizes the policy
type RoutePolicyOption func(*RouteAccessPolicy)

// WithLoginPath overrides the sign-in path
func WithLoginPath(path string) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		if path != "" {
			p.loginPath = path
		}
	}
}

// WithDashboardPath overrides the default landing path
func WithDashboardPath(path string) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		if path != "" {
			p.dashboardPath = path
		}
	}
}

// WithOnboardingPath overrides the onboarding path
func WithOnboardingPath(path string) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		if path != "" {
			p.onboardingPath = path
		}
	}
}

// WithProtectedPrefixes replaces the prefixes that require a session
func WithProtectedPrefixes(prefixes ...string) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		p.protectedPrefixes = prefixes
	}
}

// WithPublicOnlyPaths replaces the paths reserved for signed-out visitors
func WithPublicOnlyPaths(paths ...string) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		p.publicOnlyPaths = paths
	}
}

// WithExemptPaths replaces the paths that bypass the policy entirely
func WithExemptPaths(paths ...string) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		p.exemptPaths = paths
	}
}

// WithRolePrefix restricts a path prefix to a single role
func WithRolePrefix(prefix string, role Role) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		if prefix == "" {
			return
		}
		if p.rolePrefixes == nil {
			p.rolePrefixes = map[string]Role{}
		}
		p.rolePrefixes[prefix] = role
	}
}

// WithRoutePolicyLogger overrides the default logger
func WithRoutePolicyLogger(logger Logger) RoutePolicyOption {
	return func(p *RouteAccessPolicy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewRouteAccessPolicy creates a policy with board defaults
func NewRouteAccessPolicy(opts ...RoutePolicyOption) *RouteAccessPolicy {
	p := &RouteAccessPolicy{
		loginPath:         "/login",
		dashboardPath:     DefaultDashboardPath,
		onboardingPath:    "/onboarding",
		protectedPrefixes: []string{"/dashboard", "/onboarding"},
		publicOnlyPaths:   []string{"/login", "/signup", "/password-reset"},
		exemptPaths:       []string{"/password-reset/confirm"},
		rolePrefixes: map[string]Role{
			"/dashboard/post-job":        RoleEmployer,
			"/dashboard/my-jobs":         RoleEmployer,
			"/dashboard/my-applications": RoleJobSeeker,
			"/dashboard/admin":           RoleAdmin,
		},
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// NewRouteAccessPolicyFromConfig builds a policy from board config,
// keeping the default prefix sets
func NewRouteAccessPolicyFromConfig(cfg Config, opts ...RoutePolicyOption) *RouteAccessPolicy {
	base := []RoutePolicyOption{
		WithLoginPath(cfg.GetLoginPath()),
		WithDashboardPath(cfg.GetDashboardPath()),
		WithOnboardingPath(cfg.GetOnboardingPath()),
	}
	return NewRouteAccessPolicy(append(base, opts...)...)
}

// CheckRouteAccess evaluates the gate for one request. A nil identity means
// the request carries no valid session.
func (p *RouteAccessPolicy) CheckRouteAccess(identity *Identity, path string) Decision {
	cleanPath := stripQuery(path)

	for _, exempt := range p.exemptPaths {
		if pathHasPrefix(cleanPath, exempt) {
			return allowDecision()
		}
	}

	if identity == nil {
		for _, prefix := range p.protectedPrefixes {
			if pathHasPrefix(cleanPath, prefix) {
				return redirectDecision(p.loginRedirect(path))
			}
		}
		return allowDecision()
	}

	for _, publicOnly := range p.publicOnlyPaths {
		if pathHasPrefix(cleanPath, publicOnly) {
			return redirectDecision(p.dashboardPath)
		}
	}

	if !identity.OnboardingComplete {
		if pathHasPrefix(cleanPath, p.onboardingPath) {
			return allowDecision()
		}
		return redirectDecision(p.onboardingPath)
	}

	if pathHasPrefix(cleanPath, p.onboardingPath) {
		return redirectDecision(p.dashboardPath)
	}

	if required, restricted := p.requiredRole(cleanPath); restricted {
		if !identity.Role.IsValid() {
			p.logger.Warn("route policy rejected unknown role", "role", identity.Role, "path", cleanPath)
			return redirectDecision(p.dashboardPath)
		}
		if identity.Role != required {
			return redirectDecision(p.dashboardPath)
		}
	}

	return allowDecision()
}

// loginRedirect attaches the requested path as a return target only when
// the validator accepts it, the sole defense against open redirects here.
func (p *RouteAccessPolicy) loginRedirect(originalPath string) string {
	if !IsValidInternalPath(originalPath) {
		return p.loginPath
	}
	return p.loginPath + "?redirectTo=" + originalPath
}

// requiredRole resolves the most specific role restriction covering the path
func (p *RouteAccessPolicy) requiredRole(path string) (Role, bool) {
	var matched string
	var role Role

	for prefix, required := range p.rolePrefixes {
		if !pathHasPrefix(path, prefix) {
			continue
		}
		if len(prefix) > len(matched) {
			matched = prefix
			role = required
		}
	}

	return role, matched != ""
}

func pathHasPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
