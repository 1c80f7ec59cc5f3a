package auth

// Role is carried in the access token issued by the HR platform.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// CanManagePayroll reports whether the role may run and move payroll periods.
func (r Role) CanManagePayroll() bool {
	return r == RoleOwner || r == RoleManager
}
