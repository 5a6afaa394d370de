package models

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	gorm.Model
	CourseID         uint      `gorm:"index;not null" json:"courseId"`
	Title            string    `gorm:"not null" json:"title"`
	Description      string    `json:"description"`
	TotalMarks       int       `gorm:"not null" json:"totalMarks"`
	DueDate          time.Time `gorm:"not null" json:"dueDate"`
	SubmissionsCount int       `gorm:"default:0" json:"submissionsCount"`
	FileURL          string    `json:"file"`
	ObjectKey        string    `json:"-"`
}

// AssignmentSubmission is one student's submission. The unique index
// on (assignment_id, student_id) enforces one submission per student
// at the storage layer.
type AssignmentSubmission struct {
	gorm.Model
	AssignmentID uint       `gorm:"uniqueIndex:idx_assignment_submission_student;not null" json:"assignmentId"`
	CourseID     uint       `gorm:"not null" json:"courseId"`
	StudentID    uint       `gorm:"uniqueIndex:idx_assignment_submission_student;not null" json:"studentId"`
	StudentName  string     `gorm:"not null" json:"studentName"`
	StudentEmail string     `gorm:"not null" json:"studentEmail"`
	SubmittedOn  time.Time  `json:"submittedOn"`
	Marks        *int       `json:"marks"`
	FileURL      string     `json:"file"`
	ObjectKey    string     `json:"-"`
	GradedAt     *time.Time `json:"gradedAt,omitempty"`
}
