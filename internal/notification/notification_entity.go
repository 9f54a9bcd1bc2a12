package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindRequestCreated              = "request_created"
	KindRequestStatusChanged        = "request_status_changed"
	KindRequestApprovedViaComplaint = "request_approved_via_complaint"
	KindComplaintFiled              = "complaint_filed"
	KindComplaintResolved           = "complaint_resolved"

	EntityRequest   = "solicitud"
	EntityComplaint = "reclamo"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_notificaciones_user_read"`
	Kind       string    `gorm:"type:varchar(50);not null"`
	EntityType string    `gorm:"type:varchar(30)"`
	EntityID   string    `gorm:"type:varchar(64)"`
	Title      string    `gorm:"type:varchar(200);not null"`
	Message    string    `gorm:"type:text;not null"`
	LinkURL    *string   `gorm:"type:text"`
	Read       bool      `gorm:"not null;default:false;index:idx_notificaciones_user_read"`
	ReadAt     *time.Time
	CreatedAt  time.Time
}

func (Notification) TableName() string {
	return "notificaciones"
}
