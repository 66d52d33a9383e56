package model

import "time"

// Notification is one delivered message for one recipient. Fanout
// writes one document per recipient in the resolved audience.
type Notification struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Message   string    `json:"message" bson:"message" validate:"required,min=1,max=1000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
