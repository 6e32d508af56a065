// Package mailertest provides a Mailer that records messages instead of delivering them.
package mailertest

import (
	"context"
	"sync"

	"mail_admin/internal/mailer"
)

// Recorder captures every message passed to Send
type Recorder struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error // returned by Send when set; the message is not recorded
}

func (r *Recorder) Send(_ context.Context, msg mailer.Message) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns the recorded messages in send order
func (r *Recorder) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}
