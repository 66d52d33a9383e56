package kafka

// Topic layout for the notification fanout pipeline.
const (
	TopicFanout    = "notifications.fanout"
	TopicFanoutDLQ = "notifications.fanout.dlq"

	GroupNotifications = "notifications-service"
)
