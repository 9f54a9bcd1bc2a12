package complaint

import (
	"strings"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
)

// EligibilityWindow is how long a request must sit pending before it can be
// contested.
const EligibilityWindow = 72 * time.Hour

const (
	reasonApproved  = "La solicitud ya fue aprobada"
	reasonTooRecent = "La solicitud debe tener al menos 3 días pendiente para presentar un reclamo"
	reasonDuplicate = "Ya existe un reclamo para esta solicitud"
)

// Eligibility reports whether a complaint can be filed against a request with
// the given status and creation time. A rejected request always qualifies.
func Eligibility(status string, createdAt, now time.Time) (bool, string) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case leave.StatusRejected:
		return true, ""
	case leave.StatusPending:
		if now.Sub(createdAt) >= EligibilityWindow {
			return true, ""
		}
		return false, reasonTooRecent
	default:
		return false, reasonApproved
	}
}
