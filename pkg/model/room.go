package model

// Room is a catalog entry. Mutating it broadcasts a notification to
// every registered user.
type Room struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomName string `json:"room_name" bson:"room_name" validate:"required,min=1,max=100"`
	Building string `json:"building" bson:"building" validate:"required,min=1,max=100"`
	Floor    int    `json:"floor" bson:"floor" validate:"min=-5,max=200"`
	Capacity int    `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
}

type RoomUpdate struct {
	RoomName string `json:"room_name,omitempty" validate:"omitempty,min=1,max=100"`
	Building string `json:"building,omitempty" validate:"omitempty,min=1,max=100"`
	Floor    *int   `json:"floor,omitempty" validate:"omitempty,min=-5,max=200"`
	Capacity *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=10000"`
}
