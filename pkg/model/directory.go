package model

// Read-only projections of catalog collections owned by the
// surrounding system. Only the fields the allocation services need.

type Course struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty"`
	CourseName string `json:"course_name" bson:"course_name"`
	Code       string `json:"code" bson:"code"`
}

type Enrollment struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	UserID   string `json:"user_id" bson:"user_id"`
	CourseID string `json:"course_id" bson:"course_id"`
}

type User struct {
	ID   string `json:"id,omitempty" bson:"_id,omitempty"`
	Name string `json:"name" bson:"name"`
}
