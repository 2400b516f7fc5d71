package enums

// NotificationType is stored on every inbox row.
type NotificationType string

const (
	NotificationTypeWelcome        NotificationType = "welcome"
	NotificationTypeOrderPlaced    NotificationType = "order_placed"
	NotificationTypeOrderConfirmed NotificationType = "order_confirmed"
)

var notificationTypes = []NotificationType{
	NotificationTypeWelcome,
	NotificationTypeOrderPlaced,
	NotificationTypeOrderConfirmed,
}

func (n NotificationType) IsValid() bool { return oneOf(n, notificationTypes) }

func ParseNotificationType(value string) (NotificationType, error) {
	return parse("notification type", value, notificationTypes)
}
