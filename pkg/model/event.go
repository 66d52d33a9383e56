package model

// Audience selection strategies for notification fanout.
const (
	AudienceEnrolled = "enrolled" // users enrolled in CourseID
	AudienceAllUsers = "all"      // every registered user
)

// Event types carried in the Kafka event-type header.
const (
	EventSessionCreated = "session.created"
	EventSessionUpdated = "session.updated"
	EventSessionDeleted = "session.deleted"
	EventRoomCreated    = "room.created"
	EventRoomUpdated    = "room.updated"
	EventRoomDeleted    = "room.deleted"
)

// FanoutEvent is the wire contract between allocation services and the
// notification consumer. The producer resolves the message text; the
// consumer resolves the audience into recipients.
type FanoutEvent struct {
	Audience string `json:"audience"`
	CourseID string `json:"course_id,omitempty"`
	Message  string `json:"message"`
}
