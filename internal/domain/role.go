package domain

// Role names carried in Account.Roles and in the Bearer token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// HasRole reports whether roles contains role.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
