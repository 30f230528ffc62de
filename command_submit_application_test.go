package jobboard_test

import (
	"context"
	"testing"

	jobboard "github.com/goliatone/go-jobboard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubmitApplicationHandlerAuthorization(t *testing.T) {
	seeker := newSeeker()
	jobID := uuid.New()

	handler := jobboard.NewSubmitApplicationHandler(NewMockRepoManager(), nil)

	t.Run("nil identity", func(t *testing.T) {
		err := handler.Execute(context.Background(), nil, jobboard.SubmitApplicationMessage{
			JobID:    jobID,
			SeekerID: seeker.ID,
		})
		assert.ErrorIs(t, err, jobboard.ErrUnauthenticated)
	})

	t.Run("employers do not apply", func(t *testing.T) {
		employer := newEmployer()
		err := handler.Execute(context.Background(), employer, jobboard.SubmitApplicationMessage{
			JobID:    jobID,
			SeekerID: employer.ID,
		})
		assert.ErrorIs(t, err, jobboard.ErrForbidden)
	})

	t.Run("cannot apply on behalf of another seeker", func(t *testing.T) {
		err := handler.Execute(context.Background(), newSeeker(), jobboard.SubmitApplicationMessage{
			JobID:    jobID,
			SeekerID: seeker.ID,
		})
		assert.ErrorIs(t, err, jobboard.ErrForbidden)
	})
}
