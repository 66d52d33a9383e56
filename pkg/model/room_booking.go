package model

// RoomBooking is an ad-hoc reservation of a room. It shares the room
// keyspace with ClassSession.Location, so committing one requires both
// the timetable check and the own-kind overlap check to pass.
type RoomBooking struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	RoomID    string `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	Reason    string `json:"reason" bson:"reason" validate:"omitempty,max=500"`
	Day       string `json:"day" bson:"day" validate:"required,weekday"`
	StartTime string `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" bson:"end_time" validate:"required,clock"`
}

type RoomBookingUpdate struct {
	UserID    string `json:"user_id,omitempty" validate:"omitempty,mongodb"`
	RoomID    string `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Day       string `json:"day,omitempty" validate:"omitempty,weekday"`
	StartTime string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,clock"`
}
