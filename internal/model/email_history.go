package model

import "time"

const (
	SendStatusSuccess = "success"
	SendStatusFailed  = "failed"

	DefaultRecipientName = "Recipient"
)

// EmailHistory is one audit row in the email_history table
type EmailHistory struct {
	ID             int64     `json:"id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	TemplateName   string    `json:"template_name"`
	Status         string    `json:"status"`
	Role           string    `json:"role"`
	IsBulk         bool      `json:"is_bulk"`
	SentAt         time.Time `json:"sent_at"`
	AdminID        *int64    `json:"admin_id,omitempty"`
}

// SendMailRequest is the body of POST /api/send-mail
type SendMailRequest struct {
	Email        string `json:"email" binding:"required"`
	Name         string `json:"name"`
	TemplateName string `json:"templateName"`
	Role         string `json:"role"`
	IsBulk       bool   `json:"isBulk"`
}
