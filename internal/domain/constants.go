package domain

const (
	RoleParent = "PARENT"
	RoleChild  = "CHILD"
)

const (
	ConnectionStatusActive = "active"
)

// Notification types carried in direct records and triggers.
const (
	NotifTypeButtonPressed = "button_pressed"
	NotifTypeChildMessage  = "child_message"
	NotifTypeChildStatus   = "child_status"
	NotifTypeBroadcast     = "broadcast"
	NotifTypeTest          = "test"
)

// Delivery outcomes recorded in notification history.
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Collection (table) names used by the record store.
const (
	CollectionUsers               = "users"
	CollectionInviteCodes         = "invite_codes"
	CollectionConnections         = "parent_child_connections"
	CollectionNotifications       = "notifications"
	CollectionTriggers            = "notification_triggers"
	CollectionNotificationHistory = "notification_history"
	CollectionPushTokens          = "push_tokens"
)
