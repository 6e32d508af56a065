package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mail_admin/internal/mailer"
	"mail_admin/internal/metrics"
	"mail_admin/internal/model"
	"mail_admin/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrRecipientRequired = errors.New("recipient email is required")
	ErrDelivery          = errors.New("mail transport rejected the message")
)

// MailService sends one templated email and records it in the audit log
type MailService interface {
	Send(ctx context.Context, adminID int64, req model.SendMailRequest) (*model.EmailHistory, error)
}

type mailService struct {
	userRepo         repository.UserRepository
	historyRepo      repository.HistoryRepository
	mailer           mailer.Mailer
	metrics          *metrics.Metrics
	auditFailedSends bool
	log              zerolog.Logger
}

// NewMailService creates a new MailService. With auditFailedSends, transport failures are
// also written to email_history with status "failed".
func NewMailService(
	userRepo repository.UserRepository,
	historyRepo repository.HistoryRepository,
	m mailer.Mailer,
	mt *metrics.Metrics,
	auditFailedSends bool,
	log zerolog.Logger,
) MailService {
	return &mailService{
		userRepo:         userRepo,
		historyRepo:      historyRepo,
		mailer:           m,
		metrics:          mt,
		auditFailedSends: auditFailedSends,
		log:              log.With().Str("component", "mail_service").Logger(),
	}
}

// resolveRole prefers the stored role, then the caller-supplied one, then "user"
func (s *mailService) resolveRole(ctx context.Context, email, callerRole string) (string, error) {
	stored, err := s.userRepo.FindRoleByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up recipient role: %w", err)
	}
	if stored != "" {
		return stored, nil
	}
	if callerRole != "" {
		return callerRole, nil
	}
	return model.RoleUser, nil
}

// Send renders the selected template for one recipient and dispatches it.
// Only sends accepted by the transport are audited unless auditFailedSends is set.
func (s *mailService) Send(ctx context.Context, adminID int64, req model.SendMailRequest) (*model.EmailHistory, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrRecipientRequired
	}

	role, err := s.resolveRole(ctx, email, strings.TrimSpace(req.Role))
	if err != nil {
		return nil, err
	}

	rendered, err := mailer.Render(req.TemplateName, req.Name)
	if err != nil {
		return nil, err
	}

	recipientName := req.Name
	if recipientName == "" {
		recipientName = model.DefaultRecipientName
	}
	entry := &model.EmailHistory{
		RecipientEmail: email,
		RecipientName:  recipientName,
		TemplateName:   rendered.TemplateName,
		Status:         model.SendStatusSuccess,
		Role:           role,
		IsBulk:         req.IsBulk,
		AdminID:        &adminID,
	}

	start := time.Now()
	sendErr := s.mailer.Send(ctx, mailer.Message{To: email, Subject: rendered.Subject, HTML: rendered.HTML})
	if sendErr != nil {
		s.metrics.RecordEmail(rendered.TemplateName, model.SendStatusFailed, time.Since(start))
		s.log.Error().Err(sendErr).Str("to", email).Str("template", rendered.TemplateName).Bool("bulk", req.IsBulk).Msg("email dispatch failed")
		if s.auditFailedSends {
			entry.Status = model.SendStatusFailed
			if err := s.historyRepo.Create(ctx, entry); err != nil {
				s.log.Error().Err(err).Str("to", email).Msg("failed to record failed send")
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrDelivery, sendErr)
	}
	s.metrics.RecordEmail(rendered.TemplateName, model.SendStatusSuccess, time.Since(start))

	if err := s.historyRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("email sent but failed to record history: %w", err)
	}
	return entry, nil
}
