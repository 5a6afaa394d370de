package models

import (
	"time"

	"gorm.io/gorm"
)

// Content type tags for uploaded course files.
const (
	ContentTypeFile         = "file"
	ContentTypePDF          = "pdf"
	ContentTypeImage        = "image"
	ContentTypeVideo        = "video"
	ContentTypeAudio        = "audio"
	ContentTypePresentation = "presentation"
	ContentTypeSpreadsheet  = "spreadsheet"
	ContentTypeDocument     = "document"
	ContentTypeEbook        = "ebook"
)

func ValidContentType(t string) bool {
	switch t {
	case ContentTypeFile, ContentTypePDF, ContentTypeImage, ContentTypeVideo,
		ContentTypeAudio, ContentTypePresentation, ContentTypeSpreadsheet,
		ContentTypeDocument, ContentTypeEbook:
		return true
	}
	return false
}

// FileUpload is one content item of a course. The bytes live in object
// storage; ObjectKey is the external identifier used for deletes and
// signed downloads.
type FileUpload struct {
	gorm.Model
	CourseID    uint      `gorm:"index;not null" json:"courseId"`
	FileName    string    `gorm:"not null" json:"fileName"`
	FileURL     string    `gorm:"not null" json:"fileUrl"`
	ObjectKey   string    `gorm:"not null" json:"-"`
	ContentType string    `gorm:"default:file" json:"contentType"`
	UploadedBy  uint      `gorm:"not null" json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
