package jobboard

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Jobs interface {
	repository.Repository[*Job]

	Create(ctx context.Context, record *Job, criteria ...repository.InsertCriteria) (*Job, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Job, criteria ...repository.InsertCriteria) (*Job, error)
	GetForEmployer(ctx context.Context, employerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Job, error)
	UpdateStatusIf(ctx context.Context, id string, expected, target JobStatus, opts ...JobStatusUpdateOption) (*Job, error)
	UpdateStatusIfTx(ctx context.Context, tx bun.IDB, id string, expected, target JobStatus, opts ...JobStatusUpdateOption) (*Job, error)
}

type jobs struct {
	repository.Repository[*Job]
	db *bun.DB
}

var (
	_ Jobs                        = (*jobs)(nil)
	_ repository.Repository[*Job] = (*jobs)(nil)
	_ JobStatusStore              = (*jobs)(nil)
)

func NewJobsRepository(db *bun.DB) Jobs {
	repo := repository.NewRepository[*Job](db, repository.ModelHandlers[*Job]{
		NewRecord: func() *Job { return &Job{} },
		GetID: func(j *Job) uuid.UUID {
			if j == nil {
				return uuid.Nil
			}
			return j.ID
		},
		SetID: func(j *Job, id uuid.UUID) {
			if j != nil {
				j.ID = id
			}
		},
		GetIdentifier: func() string {
			return "reference"
		},
	})

	return &jobs{
		Repository: repo,
		db:         db,
	}
}

func (r *jobs) Create(ctx context.Context, record *Job, criteria ...repository.InsertCriteria) (*Job, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *jobs) CreateTx(ctx context.Context, tx bun.IDB, record *Job, criteria ...repository.InsertCriteria) (*Job, error) {
	prepareJobDefaults(record)
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *jobs) GetForEmployer(ctx context.Context, employerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Job, error) {
	records := []*Job{}

	q := r.db.NewSelect().Model(&records)
	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.employer_id = ?", employerID.String()).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *jobs) UpdateStatusIf(ctx context.Context, id string, expected, target JobStatus, opts ...JobStatusUpdateOption) (*Job, error) {
	return r.UpdateStatusIfTx(ctx, r.db, id, expected, target, opts...)
}

// UpdateStatusIfTx commits the status change only when the stored status
// still matches the one observed at read time. Zero rows means either the
// record vanished or a concurrent writer got there first.
func (r *jobs) UpdateStatusIfTx(ctx context.Context, tx bun.IDB, id string, expected, target JobStatus, opts ...JobStatusUpdateOption) (*Job, error) {
	record := &Job{}

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
			"job_id":          id,
			"expected_status": expected,
			"current_status":  current.Status,
		})
	}

	return record, nil
}

// JobStatusUpdateOption customizes the conditional status update statement.
type JobStatusUpdateOption func(*bun.UpdateQuery)

// WithJobSubmittedAt stamps the moment the listing entered moderation.
func WithJobSubmittedAt(at time.Time) JobStatusUpdateOption {
	return func(q *bun.UpdateQuery) {
		q.Set("submitted_at = ?", at)
	}
}

// WithJobApprovedAt stamps the moment the listing went live.
func WithJobApprovedAt(at time.Time) JobStatusUpdateOption {
	return func(q *bun.UpdateQuery) {
		q.Set("approved_at = ?", at)
	}
}

func prepareJobDefaults(record *Job) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
