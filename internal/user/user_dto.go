package user

type CreateUserRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	Role            string  `json:"role"`
	Department      string  `json:"department"`
	Phone           string  `json:"phone"`
	Position        string  `json:"position"`
	ContractTypeID  *string `json:"contract_type_id"`
	CareerLevelID   *int    `json:"career_level_id"`
	ContractFileURL *string `json:"contract_file_url"`
}

// UpdateUserRequest applies only the fields that are present.
type UpdateUserRequest struct {
	Name            *string `json:"name"`
	Role            *string `json:"role"`
	Department      *string `json:"department"`
	Phone           *string `json:"phone"`
	Position        *string `json:"position"`
	ContractTypeID  *string `json:"contract_type_id"`
	CareerLevelID   *int    `json:"career_level_id"`
	ContractFileURL *string `json:"contract_file_url"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ListFilter struct {
	Query string
	Role  string
}

type UserResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	Department      string  `json:"department"`
	Phone           string  `json:"phone"`
	Position        string  `json:"position"`
	IsActive        bool    `json:"is_active"`
	ContractTypeID  *string `json:"contract_type_id"`
	CareerLevelID   *int    `json:"career_level_id"`
	ContractFileURL *string `json:"contract_file_url"`
	CreatedAt       string  `json:"created_at"`
}
