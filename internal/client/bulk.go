package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mail_admin/internal/model"
)

const (
	BulkRecipientName = "Bulk Recipient"
	BulkCompleted     = "completed"
)

// Outcome is the result of one recipient in a bulk run
type Outcome struct {
	Email string
	Err   error
}

// BulkResult summarizes a bulk run
type BulkResult struct {
	Status   string
	Outcomes []Outcome
}

// Failed counts recipients whose send was not accepted
func (r *BulkResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// BulkSend sends templateName to each recipient in order, one request at a time.
// A rejected session or a transport error aborts the run; other per-recipient
// failures are recorded and the run still completes.
func BulkSend(ctx context.Context, c *Client, recipients []string, templateName, role string) (*BulkResult, error) {
	result := &BulkResult{}
	for _, email := range recipients {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := c.SendMail(ctx, model.SendMailRequest{
			Email:        email,
			Name:         BulkRecipientName,
			TemplateName: templateName,
			Role:         role,
			IsBulk:       true,
		})

		var apiErr *APIError
		switch {
		case err == nil:
		case errors.As(err, &apiErr) && apiErr.SessionRejected():
			return result, err
		case errors.As(err, &apiErr):
		default:
			return result, fmt.Errorf("bulk send aborted at %s: %w", email, err)
		}
		result.Outcomes = append(result.Outcomes, Outcome{Email: email, Err: err})
	}
	result.Status = BulkCompleted
	return result, nil
}

// RecipientList collects unique recipient addresses in insertion order
type RecipientList struct {
	emails []string
	seen   map[string]struct{}
}

// Add trims email and appends it unless it is blank, lacks an "@" or is already present
func (l *RecipientList) Add(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return false
	}
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, ok := l.seen[email]; ok {
		return false
	}
	l.seen[email] = struct{}{}
	l.emails = append(l.emails, email)
	return true
}

// Load adds one address per line from r and returns how many were new
func (l *RecipientList) Load(r io.Reader) (int, error) {
	added := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if l.Add(scanner.Text()) {
			added++
		}
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("failed to read recipients: %w", err)
	}
	return added, nil
}

func (l *RecipientList) Emails() []string {
	return append([]string(nil), l.emails...)
}
