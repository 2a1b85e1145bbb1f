package notify

import "time"

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Receipt describes what happened to one notification.
type Receipt struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels,omitempty"`
	SentAt         string   `json:"sentAt"`
}

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SenderID     string
	Timeout      time.Duration
}

const (
	orderPlacedSubject = "Your order from {{restaurantName}} is confirmed"
	orderPlacedBody    = "Order {{orderId}} for ₹{{total}} has been placed and will be delivered to {{address}}."
)
