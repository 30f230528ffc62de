package jobboard

// JobStatus is the lifecycle status of a job listing
type JobStatus string

const (
	// JobStatusDraft is a listing being edited by its employer, not yet visible
	JobStatusDraft JobStatus = "draft"
	// JobStatusPendingApproval is a listing waiting on admin moderation
	JobStatusPendingApproval JobStatus = "pending_approval"
	// JobStatusApproved is a live listing accepting applications
	JobStatusApproved JobStatus = "approved"
	// JobStatusRejected is a listing turned down by an admin
	JobStatusRejected JobStatus = "rejected"
	// JobStatusArchived is a listing withdrawn by its employer
	JobStatusArchived JobStatus = "archived"
	// JobStatusFilled is a listing closed because the position was filled
	JobStatusFilled JobStatus = "filled"
)

// IsValid checks if the status is one of the predefined job statuses
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusDraft, JobStatusPendingApproval, JobStatusApproved,
		JobStatusRejected, JobStatusArchived, JobStatusFilled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions leave this status
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusRejected, JobStatusArchived, JobStatusFilled:
		return true
	default:
		return false
	}
}

// ApplicationStatus is the lifecycle status of an application to a job
type ApplicationStatus string

const (
	// ApplicationStatusSubmitted is a freshly created application
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	// ApplicationStatusViewed marks that the employer opened the application
	ApplicationStatusViewed ApplicationStatus = "viewed"
	// ApplicationStatusInterviewing means the candidate is in process
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	// ApplicationStatusOffered means an offer went out
	ApplicationStatusOffered ApplicationStatus = "offered"
	// ApplicationStatusHired closes the application with a hire
	ApplicationStatusHired ApplicationStatus = "hired"
	// ApplicationStatusRejected closes the application without a hire
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsValid checks if the status is one of the predefined application statuses
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusViewed,
		ApplicationStatusInterviewing, ApplicationStatusOffered,
		ApplicationStatusHired, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions leave this status
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusHired, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}
