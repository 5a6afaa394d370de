package models

import "gorm.io/gorm"

// Role is the closed set of account roles. Handlers compare against
// the constants, never against free-form strings from the request.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"unique;not null" json:"email"`
	Password   string `gorm:"not null" json:"-"`
	Role       Role   `gorm:"not null;default:student" json:"role"`
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
}

// Enrollment links a student to a course. The unique index makes
// duplicate enrollment a constraint violation rather than an
// application-level race.
type Enrollment struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
}
