package visibility

import (
	"strings"

	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Viewer is the authenticated caller as seen by the services.
type Viewer struct {
	UserID string
	Role   string
}

func (v Viewer) IsAdmin() bool {
	return strings.EqualFold(v.Role, RoleAdmin)
}

// CanSee reports whether the viewer may read a row owned by ownerID.
func (v Viewer) CanSee(ownerID string) bool {
	return v.IsAdmin() || (v.UserID != "" && v.UserID == ownerID)
}

// Scope restricts a query to rows owned by the viewer unless the viewer is
// an admin.
func Scope(v Viewer) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v.IsAdmin() {
			return db
		}
		return db.Where("user_id = ?", v.UserID)
	}
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
