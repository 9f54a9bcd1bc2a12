package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name            string         `gorm:"column:name;type:varchar(255);not null"`
	Email           string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Password        string         `gorm:"column:password;type:text;not null"`
	Department      string         `gorm:"column:department;type:varchar(255)"`
	Role            string         `gorm:"column:role;type:varchar(20);not null;default:'user'"`
	IsActive        bool           `gorm:"column:is_active;default:true"`
	Phone           string         `gorm:"column:phone;type:varchar(30)"`
	Position        string         `gorm:"column:position;type:varchar(255)"`
	ContractTypeID  *uuid.UUID     `gorm:"column:contract_type_id;type:uuid;index"`
	CareerLevelID   *int           `gorm:"column:career_level_id"`
	ContractFileURL *string        `gorm:"column:contract_file_url;type:text"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "usuarios"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
