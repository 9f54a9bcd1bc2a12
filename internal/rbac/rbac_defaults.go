package rbac

import "github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"

// roleParents lists inherited roles: an admin can do everything a user can.
var roleParents = [][2]string{
	{visibility.RoleAdmin, visibility.RoleUser},
}

func DefaultPermissions() []RolePermission {
	user := func(resource, action string) RolePermission {
		return RolePermission{Role: visibility.RoleUser, Resource: resource, Action: action}
	}
	admin := func(resource, action string) RolePermission {
		return RolePermission{Role: visibility.RoleAdmin, Resource: resource, Action: action}
	}

	return []RolePermission{
		user("solicitud", "read"),
		user("solicitud", "create"),
		user("reclamo", "read"),
		user("reclamo", "create"),
		user("notificacion", "read"),
		user("tipo_contrato", "read"),
		user("upload", "create"),

		admin("solicitud", "approve"),
		admin("solicitud", "delete"),
		admin("reclamo", "resolve"),
		admin("user", "read"),
		admin("user", "manage"),
		admin("tipo_contrato", "manage"),
	}
}
