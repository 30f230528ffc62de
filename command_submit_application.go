package jobboard

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubmitApplicationMessage creates a SUBMITTED application from a seeker
// to an approved listing. One application per seeker per job.
type SubmitApplicationMessage struct {
	JobID      uuid.UUID          `json:"job_id"`
	SeekerID   uuid.UUID          `json:"seeker_id"`
	Note       string             `json:"note"`
	OnResponse func(*Application) `json:"-"`
}

func (e SubmitApplicationMessage) Type() string { return "application.submit" }

type SubmitApplicationHandler struct {
	repo         RepositoryManager
	activitySink ActivitySink
}

// NewSubmitApplicationHandler creates the handler with an optional activity sink
func NewSubmitApplicationHandler(repo RepositoryManager, sink ActivitySink) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{
		repo:         repo,
		activitySink: normalizeActivitySink(sink),
	}
}

func (h SubmitApplicationHandler) Execute(ctx context.Context, identity *Identity, event SubmitApplicationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during application submit",
		)
	default:
		return h.execute(ctx, identity, event)
	}
}

func (h SubmitApplicationHandler) execute(ctx context.Context, identity *Identity, event SubmitApplicationMessage) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	if identity.Role != RoleJobSeeker || identity.ID != event.SeekerID {
		return ErrForbidden.WithMetadata(map[string]any{
			"identity_id": identity.ID.String(),
			"role":        string(identity.Role),
		})
	}

	app := &Application{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		job, err := h.repo.Jobs().GetByIDTx(ctx, tx, event.JobID.String())
		if err != nil {
			return err
		}

		if job.Status != JobStatusApproved {
			return goerrors.New("listing is not accepting applications", goerrors.CategoryValidation).
				WithTextCode("LISTING_NOT_OPEN").
				WithMetadata(map[string]any{
					"job_id": job.ID.String(),
					"status": job.Status,
				})
		}

		existing := &Application{}
		serr := tx.NewSelect().Model(existing).
			Where("?TableAlias.job_id = ?", event.JobID.String()).
			Where("?TableAlias.seeker_id = ?", event.SeekerID.String()).
			Where("?TableAlias.deleted_at IS NULL").
			Limit(1).
			Scan(ctx)
		if serr == nil {
			return goerrors.New("seeker already applied to this listing", goerrors.CategoryConflict).
				WithTextCode("DUPLICATE_APPLICATION").
				WithCode(goerrors.CodeConflict).
				WithMetadata(map[string]any{
					"job_id":    event.JobID.String(),
					"seeker_id": event.SeekerID.String(),
				})
		}
		if !repository.IsRecordNotFound(serr) {
			return serr
		}

		app.JobID = event.JobID
		app.SeekerID = event.SeekerID
		app.Note = event.Note
		app.Status = ApplicationStatusSubmitted

		if app, err = h.repo.Applications().CreateTx(ctx, tx, app); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create application")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "application submit transaction failed")
	}

	sink := normalizeActivitySink(h.activitySink)
	if serr := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventApplicationStatusChanged,
		Actor:      actorFromIdentity(identity),
		ResourceID: app.ID.String(),
		ToStatus:   string(ApplicationStatusSubmitted),
		OccurredAt: time.Now(),
	}); serr != nil {
		defLogger{}.Warn("application submit activity sink error: %v", serr)
	}

	if event.OnResponse != nil {
		event.OnResponse(app)
	}

	return nil
}
