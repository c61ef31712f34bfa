package enums

import (
	"database/sql/driver"
	"fmt"
	"slices"
)

// NotificationType classifies an in-app notification. It maps onto the
// notification_type postgres enum and refuses to store or load unknown values.
type NotificationType string

const (
	NotificationTypePriceDrop          NotificationType = "price_drop"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var notificationTypes = []NotificationType{
	NotificationTypePriceDrop,
	NotificationTypeSystemAnnouncement,
}

func (n NotificationType) IsValid() bool {
	return slices.Contains(notificationTypes, n)
}

func ParseNotificationType(value string) (NotificationType, error) {
	n := NotificationType(value)
	if !n.IsValid() {
		return "", fmt.Errorf("invalid notification type %q", value)
	}
	return n, nil
}

func (n NotificationType) Value() (driver.Value, error) {
	if !n.IsValid() {
		return nil, fmt.Errorf("invalid notification type %q", string(n))
	}
	return string(n), nil
}

func (n *NotificationType) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan notification type from %T", src)
	}
	parsed, err := ParseNotificationType(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
