package jobboard

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Applications interface {
	repository.Repository[*Application]

	Create(ctx context.Context, record *Application, criteria ...repository.InsertCriteria) (*Application, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Application, criteria ...repository.InsertCriteria) (*Application, error)
	GetForJob(ctx context.Context, jobID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Application, error)
	GetForSeeker(ctx context.Context, seekerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Application, error)
	UpdateStatusIf(ctx context.Context, id string, expected, target ApplicationStatus, opts ...ApplicationStatusUpdateOption) (*Application, error)
	UpdateStatusIfTx(ctx context.Context, tx bun.IDB, id string, expected, target ApplicationStatus, opts ...ApplicationStatusUpdateOption) (*Application, error)
}

type applications struct {
	repository.Repository[*Application]
	db *bun.DB
}

var (
	_ Applications                        = (*applications)(nil)
	_ repository.Repository[*Application] = (*applications)(nil)
	_ ApplicationStatusStore              = (*applications)(nil)
)

func NewApplicationsRepository(db *bun.DB) Applications {
	repo := repository.NewRepository[*Application](db, repository.ModelHandlers[*Application]{
		NewRecord: func() *Application { return &Application{} },
		GetID: func(a *Application) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Application, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &applications{
		Repository: repo,
		db:         db,
	}
}

func (r *applications) Create(ctx context.Context, record *Application, criteria ...repository.InsertCriteria) (*Application, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *applications) CreateTx(ctx context.Context, tx bun.IDB, record *Application, criteria ...repository.InsertCriteria) (*Application, error) {
	prepareApplicationDefaults(record)
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *applications) GetForJob(ctx context.Context, jobID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Application, error) {
	records := []*Application{}

	q := r.db.NewSelect().Model(&records)
	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.job_id = ?", jobID.String()).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *applications) GetForSeeker(ctx context.Context, seekerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Application, error) {
	records := []*Application{}

	q := r.db.NewSelect().Model(&records)
	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.seeker_id = ?", seekerID.String()).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *applications) UpdateStatusIf(ctx context.Context, id string, expected, target ApplicationStatus, opts ...ApplicationStatusUpdateOption) (*Application, error) {
	return r.UpdateStatusIfTx(ctx, r.db, id, expected, target, opts...)
}

// UpdateStatusIfTx commits the status change only when the stored status
// still matches the one observed at read time.
func (r *applications) UpdateStatusIfTx(ctx context.Context, tx bun.IDB, id string, expected, target ApplicationStatus, opts ...ApplicationStatusUpdateOption) (*Application, error) {
	record := &Application{}

	q := tx.NewUpdate().Model(record).
		Set("status = ?", target).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.status = ?", expected).
		Where("?TableAlias.deleted_at IS NULL").
		Returning("*")

	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		current, err := r.Repository.GetByIDTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		return nil, ErrConflict.WithMetadata(map[string]any{
			"application_id":  id,
			"expected_status": expected,
			"current_status":  current.Status,
		})
	}

	return record, nil
}

// ApplicationStatusUpdateOption customizes the conditional status update statement.
type ApplicationStatusUpdateOption func(*bun.UpdateQuery)

// WithApplicationViewedAt stamps the moment the employer first opened the application.
func WithApplicationViewedAt(at time.Time) ApplicationStatusUpdateOption {
	return func(q *bun.UpdateQuery) {
		q.Set("viewed_at = ?", at)
	}
}

func prepareApplicationDefaults(record *Application) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
