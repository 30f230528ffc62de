package jobboard

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var completeOnboardingSQL = `UPDATE "identities" AS "idn"
SET
	"onboarding_complete" = TRUE,
	"updated_at" = ?
WHERE
	"idn"."deleted_at" IS NULL
AND (
	"idn"."id" = ?
) RETURNING *;`

type Identities interface {
	repository.Repository[*Identity]

	Create(ctx context.Context, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	CompleteOnboarding(ctx context.Context, id uuid.UUID) (*Identity, error)
	CompleteOnboardingTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Identity, error)
}

type identities struct {
	repository.Repository[*Identity]
	db *bun.DB
}

var (
	_ Identities                       = (*identities)(nil)
	_ repository.Repository[*Identity] = (*identities)(nil)
)

func NewIdentitiesRepository(db *bun.DB) Identities {
	repo := repository.NewRepository[*Identity](db, repository.ModelHandlers[*Identity]{
		NewRecord: func() *Identity { return &Identity{} },
		GetID: func(i *Identity) uuid.UUID {
			if i == nil {
				return uuid.Nil
			}
			return i.ID
		},
		SetID: func(i *Identity, id uuid.UUID) {
			if i != nil {
				i.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &identities{
		Repository: repo,
		db:         db,
	}
}

func (r *identities) Create(ctx context.Context, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *identities) CreateTx(ctx context.Context, tx bun.IDB, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error) {
	prepareIdentityDefaults(record)
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *identities) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	record := &Identity{}

	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *identities) CompleteOnboarding(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return r.CompleteOnboardingTx(ctx, r.db, id)
}

func (r *identities) CompleteOnboardingTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Identity, error) {
	res, err := r.Repository.RawTx(ctx, tx, completeOnboardingSQL, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func prepareIdentityDefaults(record *Identity) {
	if record == nil {
		return
	}

	record.EnsureRole()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
