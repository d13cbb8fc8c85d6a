package model

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Notification is one templated message handed to the relay.
type Notification struct {
	TemplateID string            `json:"template_id"`
	Params     map[string]string `json:"template_params"`
}
