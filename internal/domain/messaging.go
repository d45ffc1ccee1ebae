package domain

import "context"

// Routing keys for registration lifecycle messages.
const (
	TopicRSVPUpdated        = "rsvp.updated"
	TopicRSVPRemoved        = "rsvp.removed"
	TopicApprovalRequested  = "approval.requested"
	TopicApprovalReviewed   = "approval.reviewed"
	TopicAttendeeCheckedIn  = "attendee.checked_in"
	TopicAttendeeCheckedOut = "attendee.checked_out"
	TopicAttendeeRemoved    = "attendee.removed"
)

// MessagePublisher publishes registration lifecycle messages for
// downstream consumers (notifications, analytics). Publishing is
// best-effort: services log failures and do not roll back.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
