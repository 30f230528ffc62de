package jobboard

// OwnsJob reports whether the identity may manage the job: admins always,
// employers only for their own listings. Nil inputs fail closed.
func OwnsJob(identity *Identity, job *Job) bool {
	if identity == nil || job == nil {
		return false
	}
	if identity.Role.IsAdmin() {
		return true
	}
	return identity.ID == job.EmployerID
}

// CanManageApplication reports whether the identity may mutate applications
// to the given job. Ownership derives from the job record, applications do
// not carry their own employer reference.
func CanManageApplication(identity *Identity, job *Job) bool {
	return OwnsJob(identity, job)
}

// CanReadApplication reports whether the identity may view the application:
// the managing employer, an admin, or the seeker who submitted it.
func CanReadApplication(identity *Identity, app *Application, job *Job) bool {
	if identity == nil || app == nil {
		return false
	}
	if identity.ID == app.SeekerID {
		return true
	}
	return CanManageApplication(identity, job)
}
