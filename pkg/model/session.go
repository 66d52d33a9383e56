package model

// ClassSession is one fixed timetable entry. Overlap scope for its own
// kind is (courseID, week, day); Location is the physical room and is
// the scope ad-hoc room bookings must be checked against.
type ClassSession struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CourseID  string `json:"course_id" bson:"course_id" validate:"required,mongodb"`
	Week      int    `json:"week" bson:"week" validate:"required,min=1,max=53"`
	Day       string `json:"day" bson:"day" validate:"required,weekday"`
	StartTime string `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" bson:"end_time" validate:"required,clock"`
	FacultyID string `json:"faculty_id" bson:"faculty_id" validate:"required,mongodb"`
	Location  string `json:"location" bson:"location" validate:"required,mongodb"`
}

// ClassSessionUpdate enumerates the updatable fields; nil/zero means
// "keep the current value".
type ClassSessionUpdate struct {
	CourseID  string `json:"course_id,omitempty" validate:"omitempty,mongodb"`
	Week      *int   `json:"week,omitempty" validate:"omitempty,min=1,max=53"`
	Day       string `json:"day,omitempty" validate:"omitempty,weekday"`
	StartTime string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,clock"`
	FacultyID string `json:"faculty_id,omitempty" validate:"omitempty,mongodb"`
	Location  string `json:"location,omitempty" validate:"omitempty,mongodb"`
}
