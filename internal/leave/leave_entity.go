package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveRequest struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExpedienteNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_solicitudes_expediente"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_solicitudes_user_status"`

	Type        string    `gorm:"type:varchar(50);not null"`
	Reason      string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	Phone       string    `gorm:"type:varchar(30);not null"`
	Email       string    `gorm:"type:varchar(150);not null"`
	Position    string    `gorm:"type:varchar(150);not null"`
	Institution string    `gorm:"type:varchar(200);not null"`
	PaidLeave   bool      `gorm:"not null;default:false"`

	Status        string  `gorm:"type:varchar(20);not null;default:'pendiente';index:idx_solicitudes_user_status"`
	Comments      *string `gorm:"type:text"`
	AttachmentURL *string `gorm:"type:text"`
	MemoURL       *string `gorm:"type:text"`

	ReviewedBy *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_solicitudes_deleted_at"`
}

func (LeaveRequest) TableName() string {
	return "solicitudes"
}
