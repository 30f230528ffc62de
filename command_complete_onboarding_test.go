package jobboard_test

import (
	"context"
	"testing"

	jobboard "github.com/goliatone/go-jobboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompleteOnboardingHandler(t *testing.T) {
	employer := newEmployer()
	employer.OnboardingComplete = false

	completed := &jobboard.Identity{
		ID:                 employer.ID,
		Role:               jobboard.RoleEmployer,
		OnboardingComplete: true,
		FirstName:          "Ada",
		LastName:           "Lovelace",
		CompanyName:        "Analytical Engines",
	}

	repo := NewMockRepoManager()
	repo.IdentitiesRepo.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(rec *jobboard.Identity) bool {
		return rec.ID == employer.ID &&
			rec.FirstName == "Ada" &&
			rec.Phone == "+16502530000"
	}), mock.Anything).Return(completed, nil).Once()
	repo.IdentitiesRepo.On("CompleteOnboardingTx", mock.Anything, mock.Anything, employer.ID).
		Return(completed, nil).Once()

	sink := &MockActivitySink{}
	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt jobboard.ActivityEvent) bool {
		return evt.EventType == jobboard.ActivityEventOnboardingCompleted &&
			evt.ResourceID == employer.ID.String()
	})).Return(nil).Once()

	handler := jobboard.NewCompleteOnboardingHandler(repo, sink)

	var got *jobboard.Identity
	err := handler.Execute(context.Background(), employer, jobboard.CompleteOnboardingMessage{
		IdentityID:  employer.ID,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Phone:       "(650) 253-0000",
		CompanyName: "Analytical Engines",
		OnResponse:  func(i *jobboard.Identity) { got = i },
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.OnboardingComplete)

	repo.IdentitiesRepo.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestCompleteOnboardingHandlerRejectsInvalidInput(t *testing.T) {
	seeker := newSeeker()

	repo := NewMockRepoManager()
	handler := jobboard.NewCompleteOnboardingHandler(repo, nil)

	t.Run("nil identity", func(t *testing.T) {
		err := handler.Execute(context.Background(), nil, jobboard.CompleteOnboardingMessage{IdentityID: seeker.ID})
		assert.ErrorIs(t, err, jobboard.ErrUnauthenticated)
	})

	t.Run("cannot onboard someone else", func(t *testing.T) {
		err := handler.Execute(context.Background(), newSeeker(), jobboard.CompleteOnboardingMessage{
			IdentityID: seeker.ID,
			FirstName:  "Ada",
			LastName:   "Lovelace",
		})
		assert.ErrorIs(t, err, jobboard.ErrForbidden)
	})

	t.Run("missing names", func(t *testing.T) {
		err := handler.Execute(context.Background(), seeker, jobboard.CompleteOnboardingMessage{
			IdentityID: seeker.ID,
		})
		assert.Error(t, err)
	})

	t.Run("bogus phone number", func(t *testing.T) {
		err := handler.Execute(context.Background(), seeker, jobboard.CompleteOnboardingMessage{
			IdentityID: seeker.ID,
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Phone:      "12",
		})
		assert.Error(t, err)
	})

	repo.IdentitiesRepo.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteOnboardingMessageValidate(t *testing.T) {
	msg := jobboard.CompleteOnboardingMessage{FirstName: "Ada", LastName: "Lovelace"}
	assert.NoError(t, msg.Validate())

	assert.Error(t, jobboard.CompleteOnboardingMessage{LastName: "Lovelace"}.Validate())
	assert.Error(t, jobboard.CompleteOnboardingMessage{FirstName: "Ada"}.Validate())
}
