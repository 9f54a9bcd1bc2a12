package notification

type NotificationResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	EntityType  string  `json:"entity_type,omitempty"`
	EntityID    string  `json:"entity_id,omitempty"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	MessageHTML string  `json:"message_html"`
	LinkURL     *string `json:"link_url,omitempty"`
	Read        bool    `json:"read"`
	ReadAt      *string `json:"read_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type UpdateReadRequest struct {
	Read *bool `json:"read"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
