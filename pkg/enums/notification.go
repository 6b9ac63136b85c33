package enums

import "fmt"

// NotificationType identifies the reminder window before a due date.
type NotificationType string

const (
	NotificationTwoMonths NotificationType = "2_months"
	NotificationOneMonth  NotificationType = "1_month"
	NotificationOneWeek   NotificationType = "1_week"
)

var validNotificationTypes = []NotificationType{
	NotificationTwoMonths,
	NotificationOneMonth,
	NotificationOneWeek,
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

// NotificationStatus tracks delivery state of a scheduled reminder.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusPending,
	NotificationStatusSent,
}

// IsValid checks whether the given status matches the canonical enum.
func (s NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
