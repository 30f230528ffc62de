package jobboard_test

import (
	"testing"

	jobboard "github.com/goliatone/go-jobboard"
	"github.com/stretchr/testify/assert"
)

func TestOwnsJob(t *testing.T) {
	employer := newEmployer()
	job := newJob(employer.ID, jobboard.JobStatusApproved)

	assert.True(t, jobboard.OwnsJob(employer, job))
	assert.True(t, jobboard.OwnsJob(newAdmin(), job))
	assert.False(t, jobboard.OwnsJob(newEmployer(), job))
	assert.False(t, jobboard.OwnsJob(newSeeker(), job))
	assert.False(t, jobboard.OwnsJob(nil, job))
	assert.False(t, jobboard.OwnsJob(employer, nil))
}

func TestCanManageApplication(t *testing.T) {
	employer := newEmployer()
	job := newJob(employer.ID, jobboard.JobStatusApproved)

	assert.True(t, jobboard.CanManageApplication(employer, job))
	assert.True(t, jobboard.CanManageApplication(newAdmin(), job))
	assert.False(t, jobboard.CanManageApplication(newEmployer(), job))
	assert.False(t, jobboard.CanManageApplication(newSeeker(), job))
	assert.False(t, jobboard.CanManageApplication(nil, job))
}

func TestCanReadApplication(t *testing.T) {
	employer := newEmployer()
	seeker := newSeeker()
	job := newJob(employer.ID, jobboard.JobStatusApproved)
	app := newApplication(job.ID, seeker.ID, jobboard.ApplicationStatusSubmitted)

	assert.True(t, jobboard.CanReadApplication(seeker, app, job))
	assert.True(t, jobboard.CanReadApplication(employer, app, job))
	assert.True(t, jobboard.CanReadApplication(newAdmin(), app, job))
	assert.False(t, jobboard.CanReadApplication(newSeeker(), app, job))
	assert.False(t, jobboard.CanReadApplication(newEmployer(), app, job))
	assert.False(t, jobboard.CanReadApplication(nil, app, job))
	assert.False(t, jobboard.CanReadApplication(seeker, nil, job))
}
