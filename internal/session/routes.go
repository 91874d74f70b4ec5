package session

import "github.com/absolutefisio/clinic-admin/internal/api"

// LandingPath maps a role to its screen after login. Administrative roles
// land on the calendar, cashiers on the register.
func LandingPath(role api.Role) string {
	switch role {
	case api.RoleCashier:
		return "/caja"
	case api.RoleSpecialist, api.RoleSecretary:
		return "/citas"
	case api.RoleSuperAdmin, api.RoleAdmin:
		return "/citas"
	default:
		return "/citas"
	}
}
