package mailer

import "context"

// Message is one rendered email addressed to a single recipient
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages through a mail transport
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
