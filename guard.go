package jobboard

// Capability names a guarded board operation
type Capability string

const (
	CapabilityJobSubmit         Capability = "job:submit"
	CapabilityJobApprove        Capability = "job:approve"
	CapabilityJobReject         Capability = "job:reject"
	CapabilityJobArchive        Capability = "job:archive"
	CapabilityJobFill           Capability = "job:fill"
	CapabilityApplicationReview Capability = "application:review"
	CapabilityApplicationRead   Capability = "application:read"
)

// AuthorizationGuard checks capabilities against an identity and the job
// the operation targets. Handlers call it before invoking the engine, the
// engine re-verifies on its own fetch of the record.
type AuthorizationGuard struct {
	logger Logger
}

// GuardOption customizes the guard
type GuardOption func(*AuthorizationGuard)

// WithGuardLogger overrides the default logger
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *AuthorizationGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewAuthorizationGuard creates a guard
func NewAuthorizationGuard(opts ...GuardOption) *AuthorizationGuard {
	g := &AuthorizationGuard{logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Authorize returns nil when the identity holds the capability for the job.
// A nil identity yields ErrUnauthenticated, everything else that fails
// yields ErrForbidden. Unknown capabilities fail closed.
func (g *AuthorizationGuard) Authorize(identity *Identity, capability Capability, job *Job) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	if !identity.Role.IsValid() {
		g.logger.Warn("authorization guard rejected unknown role", "role", identity.Role, "capability", capability)
		return g.forbidden(identity, capability, job)
	}

	if job == nil {
		return g.forbidden(identity, capability, job)
	}

	switch capability {
	case CapabilityJobSubmit:
		if identity.Role == RoleEmployer && identity.ID == job.EmployerID {
			return nil
		}
	case CapabilityJobApprove, CapabilityJobReject:
		if identity.Role.IsAdmin() {
			return nil
		}
	case CapabilityJobArchive, CapabilityJobFill,
		CapabilityApplicationReview, CapabilityApplicationRead:
		if OwnsJob(identity, job) && identity.Role != RoleJobSeeker {
			return nil
		}
	}

	return g.forbidden(identity, capability, job)
}

func (g *AuthorizationGuard) forbidden(identity *Identity, capability Capability, job *Job) error {
	meta := map[string]any{
		"capability":  string(capability),
		"identity_id": identity.ID.String(),
		"role":        string(identity.Role),
	}
	if job != nil {
		meta["job_id"] = job.ID.String()
	}
	return ErrForbidden.WithMetadata(meta)
}
