package complaint

import (
	"time"

	"github.com/google/uuid"
)

type Complaint struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_reclamos_request_user"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_reclamos_request_user;index:idx_reclamos_user_status"`

	Message       string  `gorm:"type:text;not null"`
	AttachmentURL *string `gorm:"type:text"`

	Status     string     `gorm:"type:varchar(20);not null;default:'pendiente';index:idx_reclamos_user_status"`
	Response   *string    `gorm:"type:text"`
	ResolvedBy *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Complaint) TableName() string {
	return "reclamos"
}
