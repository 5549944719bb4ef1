// internal/workers/communication/send-decision-notification/models.go
package senddecisionnotification

import "lending-workers/internal/assessment"

type Input struct {
	AssessmentID  string            `json:"assessmentId,omitempty"`
	ApplicantName string            `json:"applicantName,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Email         string            `json:"email,omitempty"`
	Purpose       string            `json:"purpose,omitempty"`
	Assessment    assessment.Result `json:"assessment"`
}

type Output struct {
	NotificationID string     `json:"notificationId"`
	Status         string     `json:"status"`
	Deliveries     []Delivery `json:"deliveries,omitempty"`
	SentAt         string     `json:"sentAt"` // ISO 8601
}

type Delivery struct {
	Channel   string `json:"channel"`
	MessageID string `json:"messageId"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)
