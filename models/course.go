package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title         string  `gorm:"not null" json:"title"`
	Price         float64 `gorm:"default:0" json:"price"`
	DurationWeeks int     `gorm:"default:1" json:"duration_weeks"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	ImageKey      string  `json:"-"`

	// Instructor name/email are denormalized onto the course so public
	// listings don't join the users table.
	InstructorID    uint   `gorm:"not null" json:"instructorId"`
	InstructorName  string `json:"instructor_name"`
	InstructorEmail string `json:"instructor_email"`
}
