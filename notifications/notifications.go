// Package notifications defines the service interface used to reach an
// operator out-of-band (email, SMS) and the notification payload it carries.
package notifications

import "context"

// Notification is a single message for a recipient. Body carries the HTML
// version and PlainBody the plain text fallback; SMS services use Body only.
type Notification struct {
	ToName    string
	ToAddress string
	ToNumber  string
	Subject   string
	Body      string
	PlainBody string
}

// NotificationService is implemented by every notification transport. New
// receives the transport specific configuration struct.
type NotificationService interface {
	New(conf any) error
	SendNotification(context.Context, *Notification) error
}
