package jobboard

import (
	"context"
	"fmt"
	"time"
)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	ID   string
	Type string
}

func actorFromIdentity(identity *Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "system"}
	}
	return ActorRef{
		ID:   identity.ID.String(),
		Type: string(identity.Role),
	}
}

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor      ActorRef
	ResourceID string
	From       string
	To         string
	Meta       TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the status update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the status update succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

type transitionOptions struct {
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

func buildTransitionOptions(opts ...TransitionOption) *transitionOptions {
	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func (o *transitionOptions) cloneMetadata() TransitionMetadata {
	var cloned map[string]any
	if len(o.metadata.Metadata) > 0 {
		cloned = make(map[string]any, len(o.metadata.Metadata))
		for k, v := range o.metadata.Metadata {
			cloned[k] = v
		}
	}

	return TransitionMetadata{
		Reason:   o.metadata.Reason,
		Metadata: cloned,
	}
}

func transitionEventMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}

func runTransitionHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase, handler HookErrorHandler) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if handler == nil {
				return err
			}
			return handler(ctx, phase, err, data)
		}
	}
	return nil
}

func defaultHookErrorHandler(_ context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
	panic(fmt.Sprintf(
		"jobboard: %s transition hook failed: %v\nResourceID: %s from=%s to=%s reason=%s\nProvide jobboard.WithStateMachineHookErrorHandler to customize error handling in production.",
		phase,
		err,
		tc.ResourceID,
		tc.From,
		tc.To,
		tc.Meta.Reason,
	))
}

// transitionRule gates a single edge on the acting identity and the job
// that anchors ownership.
type transitionRule func(identity *Identity, job *Job) bool

func ruleOwningEmployer(identity *Identity, job *Job) bool {
	if identity == nil || job == nil {
		return false
	}
	return identity.Role == RoleEmployer && identity.ID == job.EmployerID
}

func ruleAdmin(identity *Identity, _ *Job) bool {
	if identity == nil {
		return false
	}
	return identity.Role.IsAdmin()
}

func ruleOwnerOrAdmin(identity *Identity, job *Job) bool {
	return ruleAdmin(identity, job) || ruleOwningEmployer(identity, job)
}

// JobStateMachine defines lifecycle operations for job listings.
type JobStateMachine interface {
	Transition(ctx context.Context, identity *Identity, job *Job, target JobStatus, opts ...TransitionOption) (*Job, error)
	AllowedTargets(identity *Identity, job *Job) []JobStatus
	CurrentStatus(job *Job) JobStatus
}

// JobStatusStore is the slice of the jobs repository the machine needs:
// a write guarded on the status observed at read time.
type JobStatusStore interface {
	UpdateStatusIf(ctx context.Context, id string, expected, target JobStatus, opts ...JobStatusUpdateOption) (*Job, error)
}

// JobStateMachineOption customizes state machine construction.
type JobStateMachineOption func(*jobStateMachine)

// WithJobStateMachineClock injects a custom clock (useful for tests).
func WithJobStateMachineClock(clock func() time.Time) JobStateMachineOption {
	return func(sm *jobStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithJobStateMachineActivitySink sets the ActivitySink used to publish lifecycle events.
func WithJobStateMachineActivitySink(sink ActivitySink) JobStateMachineOption {
	return func(sm *jobStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithJobStateMachineLogger overrides the logger used for sink failures.
func WithJobStateMachineLogger(logger Logger) JobStateMachineOption {
	return func(sm *jobStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithJobStateMachineHookErrorHandler overrides how hook failures are propagated.
func WithJobStateMachineHookErrorHandler(handler HookErrorHandler) JobStateMachineOption {
	return func(sm *jobStateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// NewJobStateMachine returns the default implementation backed by the provided store.
func NewJobStateMachine(jobs JobStatusStore, opts ...JobStateMachineOption) JobStateMachine {
	sm := &jobStateMachine{
		jobs: jobs,
		transitions: map[JobStatus]map[JobStatus]transitionRule{
			JobStatusDraft: {
				JobStatusPendingApproval: ruleOwningEmployer,
			},
			JobStatusPendingApproval: {
				JobStatusApproved: ruleAdmin,
				JobStatusRejected: ruleAdmin,
			},
			JobStatusApproved: {
				JobStatusArchived: ruleOwnerOrAdmin,
				JobStatusFilled:   ruleOwnerOrAdmin,
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

type jobStateMachine struct {
	jobs             JobStatusStore
	transitions      map[JobStatus]map[JobStatus]transitionRule
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

func (sm *jobStateMachine) Transition(ctx context.Context, identity *Identity, job *Job, target JobStatus, opts ...TransitionOption) (*Job, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	if job == nil {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "job is nil",
		})
	}

	job.EnsureStatus()
	from := job.Status

	if target == "" || !target.IsValid() {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from":   from,
			"reason": "target status is invalid",
		})
	}

	if !OwnsJob(identity, job) {
		return nil, ErrForbidden.WithMetadata(map[string]any{
			"job_id":      job.ID.String(),
			"identity_id": identity.ID.String(),
			"role":        string(identity.Role),
		})
	}

	rule, edgeExists := sm.transitions[from][target]
	if !edgeExists || !rule(identity, job) {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from":    from,
			"to":      target,
			"allowed": sm.AllowedTargets(identity, job),
		})
	}

	options := buildTransitionOptions(opts...)

	ctxData := TransitionContext{
		Actor:      actorFromIdentity(identity),
		ResourceID: job.ID.String(),
		From:       string(from),
		To:         string(target),
		Meta:       options.cloneMetadata(),
	}

	if err := runTransitionHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore, sm.hookErrorHandler); err != nil {
		return nil, err
	}

	statusOpts, stamps := sm.buildStatusOptions(target)

	updated, err := sm.jobs.UpdateStatusIf(ctx, job.ID.String(), from, target, statusOpts...)
	if err != nil {
		return nil, err
	}

	sm.applyUpdates(job, updated, target, stamps)

	if err := runTransitionHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter, sm.hookErrorHandler); err != nil {
		return nil, err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventJobStatusChanged,
		Actor:      ctxData.Actor,
		ResourceID: job.ID.String(),
		FromStatus: string(from),
		ToStatus:   string(target),
		Metadata:   transitionEventMetadata(ctxData.Meta),
	})

	return job, nil
}

// AllowedTargets lists the statuses the identity could move the job into
// from its current stored status.
func (sm *jobStateMachine) AllowedTargets(identity *Identity, job *Job) []JobStatus {
	if job == nil {
		return nil
	}
	job.EnsureStatus()

	targets := []JobStatus{}
	for target, rule := range sm.transitions[job.Status] {
		if rule(identity, job) {
			targets = append(targets, target)
		}
	}
	return targets
}

func (sm *jobStateMachine) CurrentStatus(job *Job) JobStatus {
	if job == nil {
		return ""
	}
	job.EnsureStatus()
	return job.Status
}

type jobStatusStamps struct {
	submittedAt *time.Time
	approvedAt  *time.Time
}

func (sm *jobStateMachine) buildStatusOptions(target JobStatus) ([]JobStatusUpdateOption, jobStatusStamps) {
	statusOpts := []JobStatusUpdateOption{}
	stamps := jobStatusStamps{}

	switch target {
	case JobStatusPendingApproval:
		now := sm.now()
		stamps.submittedAt = &now
		statusOpts = append(statusOpts, WithJobSubmittedAt(now))
	case JobStatusApproved:
		now := sm.now()
		stamps.approvedAt = &now
		statusOpts = append(statusOpts, WithJobApprovedAt(now))
	}

	return statusOpts, stamps
}

func (sm *jobStateMachine) applyUpdates(job, updated *Job, target JobStatus, stamps jobStatusStamps) {
	if updated != nil {
		if updated.Status != "" {
			job.Status = updated.Status
		} else {
			job.Status = target
		}
		job.SubmittedAt = updated.SubmittedAt
		job.ApprovedAt = updated.ApprovedAt
		job.UpdatedAt = updated.UpdatedAt
		return
	}

	job.Status = target
	if stamps.submittedAt != nil {
		job.SubmittedAt = stamps.submittedAt
	}
	if stamps.approvedAt != nil {
		job.ApprovedAt = stamps.approvedAt
	}
}

func (sm *jobStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("job state machine activity sink error: %v", err)
	}
}
