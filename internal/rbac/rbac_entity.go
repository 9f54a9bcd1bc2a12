package rbac

type RolePermission struct {
	ID       uint   `gorm:"primaryKey"`
	Role     string `gorm:"type:varchar(20);not null;uniqueIndex:uq_role_permissions"`
	Resource string `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permissions"`
	Action   string `gorm:"type:varchar(30);not null;uniqueIndex:uq_role_permissions"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
