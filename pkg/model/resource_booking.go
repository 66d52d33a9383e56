package model

// ResourceBooking reserves a piece of bookable equipment. The resource
// keyspace is independent: no cross-checks against rooms or sessions.
type ResourceBooking struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID     string `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	ResourceID string `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	Reason     string `json:"reason" bson:"reason" validate:"omitempty,max=500"`
	Day        string `json:"day" bson:"day" validate:"required,weekday"`
	StartTime  string `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime    string `json:"end_time" bson:"end_time" validate:"required,clock"`
}

type ResourceBookingUpdate struct {
	UserID     string `json:"user_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID string `json:"resource_id,omitempty" validate:"omitempty,mongodb"`
	Reason     string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Day        string `json:"day,omitempty" validate:"omitempty,weekday"`
	StartTime  string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime    string `json:"end_time,omitempty" validate:"omitempty,clock"`
}
