package jobboard

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Engine is the lifecycle front door: it fetches resources, runs the
// authorization guard, drives the status machines, and owns the single
// automatic retry after an optimistic-concurrency conflict.
type Engine struct {
	repo         RepositoryManager
	guard        *AuthorizationGuard
	jobMachine   JobStateMachine
	appMachine   ApplicationStateMachine
	routePolicy  *RouteAccessPolicy
	activitySink ActivitySink
	logger       Logger
	now          func() time.Time
}

// EngineOption customizes engine construction
type EngineOption func(*Engine)

// WithEngineLogger overrides the default logger
func WithEngineLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineActivitySink sets the sink shared by both machines
func WithEngineActivitySink(sink ActivitySink) EngineOption {
	return func(e *Engine) {
		e.activitySink = normalizeActivitySink(sink)
	}
}

// WithEngineClock injects a custom clock (useful for tests)
func WithEngineClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithEngineRoutePolicy overrides the default route access policy
func WithEngineRoutePolicy(policy *RouteAccessPolicy) EngineOption {
	return func(e *Engine) {
		if policy != nil {
			e.routePolicy = policy
		}
	}
}

// WithEngineGuard overrides the default authorization guard
func WithEngineGuard(guard *AuthorizationGuard) EngineOption {
	return func(e *Engine) {
		if guard != nil {
			e.guard = guard
		}
	}
}

// WithEngineJobStateMachine overrides the default job machine
func WithEngineJobStateMachine(sm JobStateMachine) EngineOption {
	return func(e *Engine) {
		if sm != nil {
			e.jobMachine = sm
		}
	}
}

// WithEngineApplicationStateMachine overrides the default application machine
func WithEngineApplicationStateMachine(sm ApplicationStateMachine) EngineOption {
	return func(e *Engine) {
		if sm != nil {
			e.appMachine = sm
		}
	}
}

// New creates an Engine over the given repositories
func New(repo RepositoryManager, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:         repo,
		guard:        NewAuthorizationGuard(),
		routePolicy:  NewRouteAccessPolicy(),
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.jobMachine == nil {
		e.jobMachine = NewJobStateMachine(repo.Jobs(),
			WithJobStateMachineActivitySink(e.activitySink),
			WithJobStateMachineLogger(e.logger),
			WithJobStateMachineClock(e.now),
		)
	}

	if e.appMachine == nil {
		e.appMachine = NewApplicationStateMachine(repo.Applications(),
			WithApplicationStateMachineActivitySink(e.activitySink),
			WithApplicationStateMachineLogger(e.logger),
			WithApplicationStateMachineClock(e.now),
		)
	}

	return e
}

// CheckRouteAccess evaluates the page-level gate for a path request
func (e *Engine) CheckRouteAccess(identity *Identity, path string) Decision {
	return e.routePolicy.CheckRouteAccess(identity, path)
}

// TransitionJob moves a job to the target status on behalf of the identity.
// On a concurrency conflict it re-fetches and retries exactly once, a second
// conflict surfaces to the caller.
func (e *Engine) TransitionJob(ctx context.Context, identity *Identity, jobID uuid.UUID, target JobStatus, opts ...TransitionOption) (*Job, error) {
	job, err := e.repo.Jobs().GetByID(ctx, jobID.String())
	if err != nil {
		return nil, err
	}

	if err := e.guard.Authorize(identity, jobCapabilityForTarget(target), job); err != nil {
		return nil, err
	}

	updated, err := e.jobMachine.Transition(ctx, identity, job, target, opts...)
	if err == nil {
		return updated, nil
	}
	if !IsConflict(err) {
		return nil, err
	}

	e.logger.Debug("job transition conflicted, retrying once", "job_id", jobID.String(), "target", target)

	job, ferr := e.repo.Jobs().GetByID(ctx, jobID.String())
	if ferr != nil {
		return nil, ferr
	}

	return e.jobMachine.Transition(ctx, identity, job, target, opts...)
}

// TransitionApplication moves an application to the target status. The
// referenced job anchors ownership. Retries exactly once on conflict.
func (e *Engine) TransitionApplication(ctx context.Context, identity *Identity, applicationID uuid.UUID, target ApplicationStatus, opts ...TransitionOption) (*Application, error) {
	app, job, err := e.fetchApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if err := e.guard.Authorize(identity, CapabilityApplicationReview, job); err != nil {
		return nil, err
	}

	updated, err := e.appMachine.Transition(ctx, identity, app, job, target, opts...)
	if err == nil {
		return updated, nil
	}
	if !IsConflict(err) {
		return nil, err
	}

	e.logger.Debug("application transition conflicted, retrying once", "application_id", applicationID.String(), "target", target)

	app, job, ferr := e.fetchApplication(ctx, applicationID)
	if ferr != nil {
		return nil, ferr
	}

	return e.appMachine.Transition(ctx, identity, app, job, target, opts...)
}

// ViewApplication records the employer opening an application: a SUBMITTED
// record moves to VIEWED through the normal guarded edge, marked as
// auto-triggered in the audit trail. Losing the race to another viewer is
// benign, the application is returned in whatever status it reached.
func (e *Engine) ViewApplication(ctx context.Context, identity *Identity, applicationID uuid.UUID) (*Application, error) {
	app, job, err := e.fetchApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if identity == nil {
		return nil, ErrUnauthenticated
	}

	if !CanReadApplication(identity, app, job) {
		return nil, ErrForbidden.WithMetadata(map[string]any{
			"application_id": app.ID.String(),
			"identity_id":    identity.ID.String(),
		})
	}

	// seekers read their own applications without touching status
	if !CanManageApplication(identity, job) {
		return app, nil
	}

	if app.Status != ApplicationStatusSubmitted {
		return app, nil
	}

	updated, err := e.appMachine.Transition(ctx, identity, app, job, ApplicationStatusViewed,
		WithTransitionMetadata(map[string]any{"auto": true}),
	)
	if err == nil {
		return updated, nil
	}
	if !IsConflict(err) {
		return nil, err
	}

	app, _, ferr := e.fetchApplication(ctx, applicationID)
	if ferr != nil {
		return nil, ferr
	}

	return app, nil
}

// AllowedJobTargets lists the statuses the identity could move the job into
func (e *Engine) AllowedJobTargets(ctx context.Context, identity *Identity, jobID uuid.UUID) ([]JobStatus, error) {
	job, err := e.repo.Jobs().GetByID(ctx, jobID.String())
	if err != nil {
		return nil, err
	}
	return e.jobMachine.AllowedTargets(identity, job), nil
}

// AllowedApplicationTargets lists the statuses the identity could move the
// application into
func (e *Engine) AllowedApplicationTargets(ctx context.Context, identity *Identity, applicationID uuid.UUID) ([]ApplicationStatus, error) {
	app, job, err := e.fetchApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return e.appMachine.AllowedTargets(identity, app, job), nil
}

func (e *Engine) fetchApplication(ctx context.Context, applicationID uuid.UUID) (*Application, *Job, error) {
	app, err := e.repo.Applications().GetByID(ctx, applicationID.String())
	if err != nil {
		return nil, nil, err
	}

	job, err := e.repo.Jobs().GetByID(ctx, app.JobID.String())
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to load job for application")
	}

	return app, job, nil
}

func jobCapabilityForTarget(target JobStatus) Capability {
	switch target {
	case JobStatusPendingApproval:
		return CapabilityJobSubmit
	case JobStatusApproved:
		return CapabilityJobApprove
	case JobStatusRejected:
		return CapabilityJobReject
	case JobStatusArchived:
		return CapabilityJobArchive
	case JobStatusFilled:
		return CapabilityJobFill
	default:
		return Capability("job:" + string(target))
	}
}
