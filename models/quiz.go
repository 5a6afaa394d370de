package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	CourseID     uint           `gorm:"index;not null" json:"courseId"`
	InstructorID uint           `gorm:"not null" json:"instructorId"`
	Title        string         `gorm:"not null" json:"title"`
	Duration     string         `json:"duration"` // "HH:mm:ss"
	Questions    []QuizQuestion `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint         `gorm:"index;not null" json:"quizId"`
	Content       string       `gorm:"not null" json:"qContent"`
	SequenceOrder int          `json:"sequenceOrder"`
	Options       []QuizOption `gorm:"constraint:OnDelete:CASCADE" json:"options"`
}

type QuizOption struct {
	gorm.Model
	QuizQuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text           string `gorm:"not null" json:"text"`
	Correct        bool   `gorm:"default:false" json:"correct"`
	SequenceOrder  int    `json:"sequenceOrder"`
}

// Submission is a student's answer set for a quiz. The unique index on
// (quiz_id, user_id) enforces one submission per user at the storage
// layer; retakes require deleting the prior submission.
type Submission struct {
	gorm.Model
	QuizID         uint               `gorm:"uniqueIndex:idx_submission_quiz_user;not null" json:"quizId"`
	UserID         uint               `gorm:"uniqueIndex:idx_submission_quiz_user;not null" json:"userId"`
	CourseID       uint               `gorm:"not null" json:"courseId"`
	Answers        []SubmissionAnswer `gorm:"constraint:OnDelete:CASCADE" json:"answers"`
	Score          int                `gorm:"not null" json:"score"`
	TotalQuestions int                `gorm:"not null" json:"totalQuestions"`
	SubmittedOn    time.Time          `json:"submitted_on"`
}

type SubmissionAnswer struct {
	gorm.Model
	SubmissionID   uint   `gorm:"index;not null" json:"-"`
	QuestionID     uint   `gorm:"not null" json:"questionId"`
	SelectedOption string `gorm:"not null" json:"selectedOptionId"`
}
