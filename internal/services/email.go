package services

import (
	"context"
	"fmt"

	"gatherly/internal/domain"
)

type emailService struct {
	mailer domain.Mailer
}

// NewEmailService returns an EmailService that renders registration
// emails and sends them through the given mailer.
func NewEmailService(mailer domain.Mailer) domain.EmailService {
	return &emailService{mailer: mailer}
}

func (s *emailService) SendApprovalDecision(ctx context.Context, data *domain.ApprovalDecisionEmailData) error {
	outcome := "rejected"
	if data.Approved {
		outcome = "approved"
	}
	subject := fmt.Sprintf("Your registration for %s was %s", data.EventName, outcome)

	text := fmt.Sprintf("Your request to join %s was %s.", data.EventName, outcome)
	if data.ReviewNotes != "" {
		text += "\n\nNote from the organizer: " + data.ReviewNotes
	}
	html := fmt.Sprintf("<p>Your request to join <strong>%s</strong> was %s.</p>", data.EventName, outcome)
	if data.ReviewNotes != "" {
		html += fmt.Sprintf("<p>Note from the organizer: %s</p>", data.ReviewNotes)
	}

	if err := s.mailer.Send(data.Email, subject, html, text); err != nil {
		return fmt.Errorf("send approval decision email: %w", err)
	}
	return nil
}

func (s *emailService) SendWaitlistNotice(ctx context.Context, data *domain.WaitlistNoticeEmailData) error {
	subject := fmt.Sprintf("You're on the waiting list for %s", data.EventName)
	text := fmt.Sprintf("%s is currently full. You're on the waiting list and will be notified if a spot opens up.", data.EventName)
	html := fmt.Sprintf("<p><strong>%s</strong> is currently full. You're on the waiting list and will be notified if a spot opens up.</p>", data.EventName)

	if err := s.mailer.Send(data.Email, subject, html, text); err != nil {
		return fmt.Errorf("send waitlist notice email: %w", err)
	}
	return nil
}
