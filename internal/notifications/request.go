package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
)

const exploreLink = "/groups/explore"

// Request is a notification the membership engine wants delivered.
type Request struct {
	ID          uuid.UUID              `json:"id"`
	RecipientID uuid.UUID              `json:"recipient_id"`
	SenderID    uuid.UUID              `json:"sender_id"`
	Kind        enums.NotificationType `json:"kind"`
	Message     string                 `json:"message"`
	Link        string                 `json:"link"`
}

// Sink accepts notification requests. Emit is fire-and-forget from the
// caller's point of view: errors are reported but never undo the change
// that produced the request.
type Sink interface {
	Emit(ctx context.Context, req Request) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, req Request) error

func (f SinkFunc) Emit(ctx context.Context, req Request) error { return f(ctx, req) }

// Validate checks the fields every transport relies on.
func (r Request) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("notification id required")
	}
	if r.RecipientID == uuid.Nil {
		return fmt.Errorf("notification recipient required")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid notification kind %q", r.Kind)
	}
	if r.Message == "" {
		return fmt.Errorf("notification message required")
	}
	return nil
}

// ToModel maps the request onto the stored notification row.
func (r Request) ToModel() *models.Notification {
	n := &models.Notification{
		ID:      r.ID,
		UserID:  r.RecipientID,
		Type:    r.Kind,
		Message: r.Message,
	}
	if r.SenderID != uuid.Nil {
		sender := r.SenderID
		n.SenderID = &sender
	}
	if r.Link != "" {
		link := r.Link
		n.Link = &link
	}
	return n
}

func groupLink(groupID uuid.UUID) string {
	return fmt.Sprintf("/groups/%s", groupID)
}

// JoinRequested is sent to the group leader when someone asks to join.
func JoinRequested(group models.Group, requesterID, leaderID uuid.UUID) Request {
	return Request{
		ID:          uuid.New(),
		RecipientID: leaderID,
		SenderID:    requesterID,
		Kind:        enums.NotificationTypeGroupRequest,
		Message:     fmt.Sprintf("A new member wants to join %s", group.Name),
		Link:        groupLink(group.ID),
	}
}

// RequestApproved is sent to the requester when the leader approves.
func RequestApproved(group models.Group, leaderID, requesterID uuid.UUID) Request {
	return Request{
		ID:          uuid.New(),
		RecipientID: requesterID,
		SenderID:    leaderID,
		Kind:        enums.NotificationTypeGroupApproved,
		Message:     fmt.Sprintf("Your request to join %s has been approved", group.Name),
		Link:        groupLink(group.ID),
	}
}

// RequestRejected is sent to the requester when the leader declines. It
// reuses the group_request kind and points back at the directory.
func RequestRejected(group models.Group, leaderID, requesterID uuid.UUID) Request {
	return Request{
		ID:          uuid.New(),
		RecipientID: requesterID,
		SenderID:    leaderID,
		Kind:        enums.NotificationTypeGroupRequest,
		Message:     fmt.Sprintf("Your request to join %s has been declined", group.Name),
		Link:        exploreLink,
	}
}

// LeadershipTransferred is sent to the member who becomes leader.
func LeadershipTransferred(group models.Group, formerLeaderID, newLeaderID uuid.UUID) Request {
	return Request{
		ID:          uuid.New(),
		RecipientID: newLeaderID,
		SenderID:    formerLeaderID,
		Kind:        enums.NotificationTypeGroupLeadership,
		Message:     fmt.Sprintf("You are now the leader of %s", group.Name),
		Link:        groupLink(group.ID),
	}
}
