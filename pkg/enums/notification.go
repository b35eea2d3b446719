package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	// NotificationTypeGroupRequest covers both new join requests (sent to the
	// leader) and rejections (sent to the requester).
	NotificationTypeGroupRequest    NotificationType = "group_request"
	NotificationTypeGroupApproved   NotificationType = "group_approved"
	NotificationTypeGroupLeadership NotificationType = "group_leadership"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeGroupRequest,
	NotificationTypeGroupApproved,
	NotificationTypeGroupLeadership,
}

func (n NotificationType) String() string {
	return string(n)
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
