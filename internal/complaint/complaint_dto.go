package complaint

type CreateComplaintRequest struct {
	RequestID     *string `json:"request_id"`
	Message       string  `json:"message"`
	AttachmentURL string  `json:"attachment_url"`
}

type ResolveComplaintRequest struct {
	Status   string `json:"status" binding:"required"`
	Response string `json:"response"`
}

type ListFilter struct {
	Status    string
	RequestID string
}

type ComplaintResponse struct {
	ID            string  `json:"id"`
	RequestID     *string `json:"request_id,omitempty"`
	UserID        string  `json:"user_id"`
	Message       string  `json:"message"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
	Status        string  `json:"status"`
	Response      *string `json:"response,omitempty"`
	ResolvedBy    *string `json:"resolved_by,omitempty"`
	ResolvedAt    *string `json:"resolved_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// ResolveResponse carries the cascade outcome. RequestStatus is set only when
// the linked request was flipped to approved.
type ResolveResponse struct {
	ComplaintResponse
	RequestStatus string   `json:"request_status,omitempty"`
	MemoPending   bool     `json:"memo_pending"`
	Warnings      []string `json:"warnings,omitempty"`
}
