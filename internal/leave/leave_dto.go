package leave

type CreateLeaveRequest struct {
	Type          string `json:"type"`
	Reason        string `json:"reason"`
	Description   string `json:"description"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Position      string `json:"position"`
	Institution   string `json:"institution"`
	PaidLeave     bool   `json:"paid_leave"`
	AttachmentURL string `json:"attachment_url"`
}

type UpdateStatusRequest struct {
	Status   string  `json:"status" binding:"required"`
	Comments *string `json:"comments"`
}

type ListFilter struct {
	Status string
	Type   string
	UserID string
}

type LeaveResponse struct {
	ID               string  `json:"id"`
	ExpedienteNumber string  `json:"expediente_number"`
	UserID           string  `json:"user_id"`
	UserName         string  `json:"user_name,omitempty"`
	Type             string  `json:"type"`
	Reason           string  `json:"reason"`
	Description      string  `json:"description,omitempty"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	Position         string  `json:"position"`
	Institution      string  `json:"institution"`
	PaidLeave        bool    `json:"paid_leave"`
	Status           string  `json:"status"`
	Comments         *string `json:"comments,omitempty"`
	AttachmentURL    *string `json:"attachment_url,omitempty"`
	MemoURL          *string `json:"memo_url,omitempty"`
	ReviewedBy       *string `json:"reviewed_by,omitempty"`
	ReviewedAt       *string `json:"reviewed_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// StatusChangeResponse reports a committed transition. MemoPending is set
// when the memo could not be stored inline and was queued for retry.
type StatusChangeResponse struct {
	LeaveResponse
	MemoPending bool     `json:"memo_pending"`
	Warnings    []string `json:"warnings,omitempty"`
}
