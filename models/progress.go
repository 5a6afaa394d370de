package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseProgress tracks one user's completion state for one course.
// The completed-content set is authoritative for the percentage;
// FileProgress below is a separate per-file flag the original system
// also keeps, and the two are intentionally not reconciled.
type CourseProgress struct {
	gorm.Model
	UserID            uint               `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID          uint               `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"courseId"`
	Progress          float64            `gorm:"default:0" json:"progress"`
	UserRating        int                `gorm:"default:0" json:"userRating"`
	Feedback          string             `gorm:"default:''" json:"feedback"`
	CompletedContents []CompletedContent `gorm:"constraint:OnDelete:CASCADE" json:"completedContents"`
}

type CompletedContent struct {
	gorm.Model
	CourseProgressID uint `gorm:"uniqueIndex:idx_completed_progress_file;not null" json:"-"`
	FileID           uint `gorm:"uniqueIndex:idx_completed_progress_file;not null" json:"fileId"`
}

type FileProgress struct {
	gorm.Model
	UserID      uint       `gorm:"uniqueIndex:idx_file_progress;not null" json:"userId"`
	FileID      uint       `gorm:"uniqueIndex:idx_file_progress;not null" json:"fileId"`
	CourseID    uint       `gorm:"uniqueIndex:idx_file_progress;not null" json:"courseId"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}
