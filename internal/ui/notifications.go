package ui

import "log"

// NotificationLevel classifies a notification for logging and future
// filtering.
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelWarn
	LevelError
)

func (l NotificationLevel) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// NotificationManager shows desktop notifications across platforms.
type NotificationManager struct {
	useNotifications bool
	appName          string
	embeddedIcon     []byte
}

// NewNotificationManager creates a notification manager. When
// useNotifications is false every Show call becomes a log line only.
func NewNotificationManager(useNotifications bool, appName string, embeddedIcon []byte) *NotificationManager {
	return &NotificationManager{
		useNotifications: useNotifications,
		appName:          appName,
		embeddedIcon:     embeddedIcon,
	}
}

// Show displays a desktop notification if enabled.
func (n *NotificationManager) Show(level NotificationLevel, title, message string) {
	log.Printf("[%s] %s: %s", level, title, message)
	if !n.useNotifications {
		return
	}
	if err := n.platformNotify(title, message); err != nil {
		log.Printf("Error showing notification: %v", err)
	}
}

var globalNotificationManager *NotificationManager

// InitGlobalNotifications sets up the process-wide notification manager.
func InitGlobalNotifications(useNotifications bool, appName string, embeddedIcon []byte) {
	globalNotificationManager = NewNotificationManager(useNotifications, appName, embeddedIcon)
}

// ShowNotification shows an informational notification via the global manager.
func ShowNotification(title, message string) {
	ShowAdminNotification(LevelInfo, title, message)
}

// ShowAdminNotification shows a leveled notification via the global manager.
func ShowAdminNotification(level NotificationLevel, title, message string) {
	if globalNotificationManager != nil {
		globalNotificationManager.Show(level, title, message)
	} else {
		log.Printf("Notification not shown (manager not initialized): [%s] %s - %s", level, title, message)
	}
}
