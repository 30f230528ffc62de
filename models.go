package jobboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Identity is the account model for seekers, employers, and admins
type Identity struct {
	bun.BaseModel      `bun:"table:identities,alias:idn"`
	ID                 uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role               Role           `bun:"role,notnull" json:"role,omitempty"`
	OnboardingComplete bool           `bun:"onboarding_complete" json:"onboarding_complete,omitempty"`
	FirstName          string         `bun:"first_name" json:"first_name,omitempty"`
	LastName           string         `bun:"last_name" json:"last_name,omitempty"`
	Email              string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone              string         `bun:"phone_number" json:"phone_number,omitempty"`
	CompanyName        string         `bun:"company_name" json:"company_name,omitempty"`
	Metadata           map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt          *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt          *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureRole normalizes a missing role to the least privileged one
func (i *Identity) EnsureRole() {
	if i.Role == "" {
		i.Role = RoleJobSeeker
	}
}

// AddMetadata will append information to a metadata attribute
func (i *Identity) AddMetadata(key string, val any) *Identity {
	if i.Metadata == nil {
		i.Metadata = make(map[string]any)
	}
	i.Metadata[key] = val
	return i
}

// Job is a listing posted by an employer
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:job"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EmployerID    uuid.UUID  `bun:"employer_id,notnull,type:uuid" json:"employer_id,omitempty"`
	Employer      *Identity  `bun:"rel:belongs-to,join:employer_id=id" json:"employer,omitempty"`
	Reference     string     `bun:"reference,notnull,unique" json:"reference,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Location      string     `bun:"location" json:"location,omitempty"`
	Status        JobStatus  `bun:"status,notnull" json:"status,omitempty"`
	SubmittedAt   *time.Time `bun:"submitted_at,nullzero" json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus normalizes a missing status to draft
func (j *Job) EnsureStatus() {
	if j.Status == "" {
		j.Status = JobStatusDraft
	}
}

// Application is a seeker's application to a job
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:app"`
	ID            uuid.UUID         `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	JobID         uuid.UUID         `bun:"job_id,notnull,type:uuid" json:"job_id,omitempty"`
	Job           *Job              `bun:"rel:belongs-to,join:job_id=id" json:"job,omitempty"`
	SeekerID      uuid.UUID         `bun:"seeker_id,notnull,type:uuid" json:"seeker_id,omitempty"`
	Seeker        *Identity         `bun:"rel:belongs-to,join:seeker_id=id" json:"seeker,omitempty"`
	Note          string            `bun:"note" json:"note,omitempty"`
	Status        ApplicationStatus `bun:"status,notnull" json:"status,omitempty"`
	ViewedAt      *time.Time        `bun:"viewed_at,nullzero" json:"viewed_at,omitempty"`
	CreatedAt     *time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time        `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus normalizes a missing status to submitted
func (a *Application) EnsureStatus() {
	if a.Status == "" {
		a.Status = ApplicationStatusSubmitted
	}
}
