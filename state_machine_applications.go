package jobboard

import (
	"context"
	"time"
)

// ApplicationStateMachine defines lifecycle operations for applications.
// Every transition is anchored on the Job the application references,
// ownership never derives from the application record itself.
type ApplicationStateMachine interface {
	Transition(ctx context.Context, identity *Identity, app *Application, job *Job, target ApplicationStatus, opts ...TransitionOption) (*Application, error)
	AllowedTargets(identity *Identity, app *Application, job *Job) []ApplicationStatus
	CurrentStatus(app *Application) ApplicationStatus
}

// ApplicationStatusStore is the slice of the applications repository the
// machine needs.
type ApplicationStatusStore interface {
	UpdateStatusIf(ctx context.Context, id string, expected, target ApplicationStatus, opts ...ApplicationStatusUpdateOption) (*Application, error)
}

// ApplicationStateMachineOption customizes state machine construction.
type ApplicationStateMachineOption func(*applicationStateMachine)

// WithApplicationStateMachineClock injects a custom clock (useful for tests).
func WithApplicationStateMachineClock(clock func() time.Time) ApplicationStateMachineOption {
	return func(sm *applicationStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithApplicationStateMachineActivitySink sets the ActivitySink used to publish lifecycle events.
func WithApplicationStateMachineActivitySink(sink ActivitySink) ApplicationStateMachineOption {
	return func(sm *applicationStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithApplicationStateMachineLogger overrides the logger used for sink failures.
func WithApplicationStateMachineLogger(logger Logger) ApplicationStateMachineOption {
	return func(sm *applicationStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithApplicationStateMachineHookErrorHandler overrides how hook failures are propagated.
func WithApplicationStateMachineHookErrorHandler(handler HookErrorHandler) ApplicationStateMachineOption {
	return func(sm *applicationStateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// NewApplicationStateMachine returns the default implementation backed by the provided store.
func NewApplicationStateMachine(applications ApplicationStatusStore, opts ...ApplicationStateMachineOption) ApplicationStateMachine {
	sm := &applicationStateMachine{
		applications: applications,
		transitions: map[ApplicationStatus]map[ApplicationStatus]transitionRule{
			ApplicationStatusSubmitted: {
				ApplicationStatusViewed:   ruleOwnerOrAdmin,
				ApplicationStatusRejected: ruleOwnerOrAdmin,
			},
			ApplicationStatusViewed: {
				ApplicationStatusInterviewing: ruleOwnerOrAdmin,
				ApplicationStatusRejected:     ruleOwnerOrAdmin,
			},
			ApplicationStatusInterviewing: {
				ApplicationStatusOffered:  ruleOwnerOrAdmin,
				ApplicationStatusRejected: ruleOwnerOrAdmin,
			},
			ApplicationStatusOffered: {
				ApplicationStatusHired:    ruleOwnerOrAdmin,
				ApplicationStatusRejected: ruleOwnerOrAdmin,
			},
		},
		now:              time.Now,
		activitySink:     noopActivitySink{},
		logger:           defLogger{},
		hookErrorHandler: defaultHookErrorHandler,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type applicationStateMachine struct {
	applications     ApplicationStatusStore
	transitions      map[ApplicationStatus]map[ApplicationStatus]transitionRule
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

func (sm *applicationStateMachine) Transition(ctx context.Context, identity *Identity, app *Application, job *Job, target ApplicationStatus, opts ...TransitionOption) (*Application, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	if app == nil {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "application is nil",
		})
	}

	if job == nil || job.ID != app.JobID {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "job does not match application",
		})
	}

	app.EnsureStatus()
	from := app.Status

	if target == "" || !target.IsValid() {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from":   from,
			"reason": "target status is invalid",
		})
	}

	if !CanManageApplication(identity, job) {
		return nil, ErrForbidden.WithMetadata(map[string]any{
			"application_id": app.ID.String(),
			"job_id":         job.ID.String(),
			"identity_id":    identity.ID.String(),
			"role":           string(identity.Role),
		})
	}

	rule, edgeExists := sm.transitions[from][target]
	if !edgeExists || !rule(identity, job) {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from":    from,
			"to":      target,
			"allowed": sm.AllowedTargets(identity, app, job),
		})
	}

	options := buildTransitionOptions(opts...)

	ctxData := TransitionContext{
		Actor:      actorFromIdentity(identity),
		ResourceID: app.ID.String(),
		From:       string(from),
		To:         string(target),
		Meta:       options.cloneMetadata(),
	}

	if err := runTransitionHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore, sm.hookErrorHandler); err != nil {
		return nil, err
	}

	statusOpts, viewedAt := sm.buildStatusOptions(target)

	updated, err := sm.applications.UpdateStatusIf(ctx, app.ID.String(), from, target, statusOpts...)
	if err != nil {
		return nil, err
	}

	sm.applyUpdates(app, updated, target, viewedAt)

	if err := runTransitionHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter, sm.hookErrorHandler); err != nil {
		return nil, err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventApplicationStatusChanged,
		Actor:      ctxData.Actor,
		ResourceID: app.ID.String(),
		FromStatus: string(from),
		ToStatus:   string(target),
		Metadata:   transitionEventMetadata(ctxData.Meta),
	})

	return app, nil
}

// AllowedTargets lists the statuses the identity could move the application
// into from its current stored status.
func (sm *applicationStateMachine) AllowedTargets(identity *Identity, app *Application, job *Job) []ApplicationStatus {
	if app == nil || job == nil {
		return nil
	}
	app.EnsureStatus()

	targets := []ApplicationStatus{}
	for target, rule := range sm.transitions[app.Status] {
		if rule(identity, job) {
			targets = append(targets, target)
		}
	}
	return targets
}

func (sm *applicationStateMachine) CurrentStatus(app *Application) ApplicationStatus {
	if app == nil {
		return ""
	}
	app.EnsureStatus()
	return app.Status
}

func (sm *applicationStateMachine) buildStatusOptions(target ApplicationStatus) ([]ApplicationStatusUpdateOption, *time.Time) {
	statusOpts := []ApplicationStatusUpdateOption{}
	var viewedAt *time.Time

	if target == ApplicationStatusViewed {
		now := sm.now()
		viewedAt = &now
		statusOpts = append(statusOpts, WithApplicationViewedAt(now))
	}

	return statusOpts, viewedAt
}

func (sm *applicationStateMachine) applyUpdates(app, updated *Application, target ApplicationStatus, viewedAt *time.Time) {
	if updated != nil {
		if updated.Status != "" {
			app.Status = updated.Status
		} else {
			app.Status = target
		}
		app.ViewedAt = updated.ViewedAt
		app.UpdatedAt = updated.UpdatedAt
		return
	}

	app.Status = target
	if viewedAt != nil {
		app.ViewedAt = viewedAt
	}
}

func (sm *applicationStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("application state machine activity sink error: %v", err)
	}
}
