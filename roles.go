package jobboard

// Role is the identity's role on the board
type Role string

const (
	// RoleJobSeeker browses listings and submits applications
	RoleJobSeeker Role = "job_seeker"
	// RoleEmployer posts jobs and reviews applications to them
	RoleEmployer Role = "employer"
	// RoleAdmin moderates submitted jobs and can act on any resource
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role grants moderation rights
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleJobSeeker,
		RoleEmployer,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
