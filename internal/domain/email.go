package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// ApprovalDecisionEmailData holds data for the approval decision email
// sent to the requester after review.
type ApprovalDecisionEmailData struct {
	Email       string
	EventName   string
	Approved    bool
	ReviewNotes string
}

// WaitlistNoticeEmailData holds data for the email sent when a "going"
// request lands on the waiting list instead.
type WaitlistNoticeEmailData struct {
	Email     string
	EventName string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendApprovalDecision(ctx context.Context, data *ApprovalDecisionEmailData) error
	SendWaitlistNotice(ctx context.Context, data *WaitlistNoticeEmailData) error
}
