package jobboard

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostJobMessage creates a new DRAFT listing for an employer
type PostJobMessage struct {
	EmployerID  uuid.UUID  `json:"employer_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	OnResponse  func(*Job) `json:"-"`
}

func (e PostJobMessage) Type() string { return "job.post" }

type PostJobHandler struct {
	repo         RepositoryManager
	activitySink ActivitySink
}

// NewPostJobHandler creates the handler with an optional activity sink
func NewPostJobHandler(repo RepositoryManager, sink ActivitySink) *PostJobHandler {
	return &PostJobHandler{
		repo:         repo,
		activitySink: normalizeActivitySink(sink),
	}
}

func (h PostJobHandler) Execute(ctx context.Context, identity *Identity, event PostJobMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during job posting",
		)
	default:
		return h.execute(ctx, identity, event)
	}
}

func (h PostJobHandler) execute(ctx context.Context, identity *Identity, event PostJobMessage) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	if identity.Role != RoleEmployer || identity.ID != event.EmployerID {
		return ErrForbidden.WithMetadata(map[string]any{
			"identity_id": identity.ID.String(),
			"role":        string(identity.Role),
		})
	}

	job := &Job{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		job.EmployerID = event.EmployerID
		job.Title = event.Title
		job.Description = event.Description
		job.Location = event.Location
		job.Status = JobStatusDraft
		job.Reference = jobReference(event.EmployerID, event.Title)

		var err error
		if job, err = h.repo.Jobs().CreateTx(ctx, tx, job); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create job listing")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "job posting transaction failed")
	}

	sink := normalizeActivitySink(h.activitySink)
	if serr := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventJobPosted,
		Actor:      actorFromIdentity(identity),
		ResourceID: job.ID.String(),
		ToStatus:   string(JobStatusDraft),
		OccurredAt: time.Now(),
	}); serr != nil {
		defLogger{}.Warn("job post activity sink error: %v", serr)
	}

	if event.OnResponse != nil {
		event.OnResponse(job)
	}

	return nil
}

// jobReference derives a stable public handle for a listing. The hashid
// keeps employer ids out of URLs while staying reproducible for dedupe.
func jobReference(employerID uuid.UUID, title string) string {
	if id, err := hashid.NewUUID(fmt.Sprintf("%s:%s:%d", employerID, title, time.Now().UnixNano())); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
