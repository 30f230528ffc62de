package jobboard

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// CompleteOnboardingMessage finalizes a profile: contact details land on
// the identity record and the onboarding flag flips.
type CompleteOnboardingMessage struct {
	IdentityID  uuid.UUID       `json:"identity_id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Phone       string          `json:"phone_number"`
	PhoneRegion string          `json:"phone_region"`
	CompanyName string          `json:"company_name"`
	OnResponse  func(*Identity) `json:"-"`
}

func (e CompleteOnboardingMessage) Type() string { return "identity.onboarding.complete" }

// Validate will run validation rules
func (e CompleteOnboardingMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Phone, validation.Length(0, 30)),
		validation.Field(&e.CompanyName, validation.Length(0, 200)),
	)
}

type CompleteOnboardingHandler struct {
	repo         RepositoryManager
	activitySink ActivitySink
}

// NewCompleteOnboardingHandler creates the handler with an optional activity sink
func NewCompleteOnboardingHandler(repo RepositoryManager, sink ActivitySink) *CompleteOnboardingHandler {
	return &CompleteOnboardingHandler{
		repo:         repo,
		activitySink: normalizeActivitySink(sink),
	}
}

func (h CompleteOnboardingHandler) Execute(ctx context.Context, identity *Identity, event CompleteOnboardingMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during onboarding",
		)
	default:
		return h.execute(ctx, identity, event)
	}
}

func (h CompleteOnboardingHandler) execute(ctx context.Context, identity *Identity, event CompleteOnboardingMessage) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	// only the identity itself completes its onboarding
	if identity.ID != event.IdentityID {
		return ErrForbidden.WithMetadata(map[string]any{
			"identity_id": identity.ID.String(),
			"target_id":   event.IdentityID.String(),
		})
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid onboarding payload")
	}

	phone, err := normalizePhone(event.Phone, event.PhoneRegion)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number").
			WithMetadata(map[string]any{"phone_number": event.Phone})
	}

	var updated *Identity
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	txErr := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &Identity{
			ID:          event.IdentityID,
			FirstName:   event.FirstName,
			LastName:    event.LastName,
			Phone:       phone,
			CompanyName: event.CompanyName,
		}

		var err error
		if updated, err = h.repo.Identities().UpdateTx(ctx, tx, record, repository.UpdateByID(event.IdentityID.String())); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update identity profile")
		}

		if updated, err = h.repo.Identities().CompleteOnboardingTx(ctx, tx, event.IdentityID); err != nil {
			return err
		}

		return nil
	})

	if txErr != nil {
		var richErr *goerrors.Error
		if goerrors.As(txErr, &richErr) {
			return richErr
		}

		return goerrors.Wrap(txErr, goerrors.CategoryInternal, "onboarding transaction failed")
	}

	sink := normalizeActivitySink(h.activitySink)
	if serr := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventOnboardingCompleted,
		Actor:      actorFromIdentity(identity),
		ResourceID: updated.ID.String(),
		OccurredAt: time.Now(),
	}); serr != nil {
		defLogger{}.Warn("onboarding activity sink error: %v", serr)
	}

	if event.OnResponse != nil {
		event.OnResponse(updated)
	}

	return nil
}

// normalizePhone formats the contact phone to E.164, empty input passes
// through untouched
func normalizePhone(raw, region string) (string, error) {
	if raw == "" {
		return "", nil
	}

	if region == "" {
		region = "US"
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", err
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", goerrors.New("phone number is not valid", goerrors.CategoryValidation)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
