package controllers

import (
	"errors"
	"log"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewProgressController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Logger: logger}
}

// GetCourseFeedback is public: it returns every rating or written
// comment students have left on the course.
func (pc *ProgressController) GetCourseFeedback(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var entries []models.CourseProgress
	if err := pc.DB.
		Where("course_id = ? AND (user_rating > 0 OR feedback <> '')", courseID).
		Find(&entries).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		var user models.User
		name := ""
		if err := pc.DB.First(&user, entry.UserID).Error; err == nil {
			name = user.Name
		}
		result = append(result, fiber.Map{
			"userId":     entry.UserID,
			"userName":   name,
			"userRating": entry.UserRating,
			"feedback":   entry.Feedback,
		})
	}
	return c.JSON(result)
}

// getOrCreateProgress returns the caller's progress row for a course,
// creating a zeroed one on first access.
func (pc *ProgressController) getOrCreateProgress(userID, courseID uint) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := pc.DB.Preload("CompletedContents").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = models.CourseProgress{UserID: userID, CourseID: courseID}
	if err := pc.DB.Create(&progress).Error; err != nil {
		// Lost a create race with a concurrent request; the unique
		// index guarantees exactly one row exists now.
		if err2 := pc.DB.Preload("CompletedContents").
			Where("user_id = ? AND course_id = ?", userID, courseID).
			First(&progress).Error; err2 != nil {
			return nil, err
		}
	}
	return &progress, nil
}

func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	progress, err := pc.getOrCreateProgress(user.ID, courseID)
	if err != nil {
		pc.Logger.Printf("progress lookup failed: %v", err)
		return utils.InternalServerError(c, "Could not load progress")
	}
	return c.JSON(progress)
}

type progressInput struct {
	Progress          *float64 `json:"progress"`
	UserRating        *int     `json:"userRating"`
	Feedback          *string  `json:"feedback"`
	CompletedContents []uint   `json:"completedContents"`
}

func (pc *ProgressController) UpsertProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var input progressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Progress != nil && (*input.Progress < 0 || *input.Progress > 100) {
		return utils.BadRequest(c, "Progress must be between 0 and 100")
	}
	if input.UserRating != nil && (*input.UserRating < 0 || *input.UserRating > 5) {
		return utils.BadRequest(c, "Rating must be between 0 and 5")
	}
	for _, id := range input.CompletedContents {
		if id == 0 {
			return utils.BadRequest(c, "Invalid content ID in completedContents")
		}
	}

	progress, err := pc.getOrCreateProgress(user.ID, courseID)
	if err != nil {
		pc.Logger.Printf("progress lookup failed: %v", err)
		return utils.InternalServerError(c, "Could not load progress")
	}

	if input.Progress != nil {
		progress.Progress = *input.Progress
	}
	if input.UserRating != nil {
		progress.UserRating = *input.UserRating
	}
	if input.Feedback != nil {
		progress.Feedback = *input.Feedback
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if input.CompletedContents != nil {
			// Hard delete: the unique index on (progress, file) covers
			// soft-deleted rows and would reject re-inserting an ID
			// that was in the previous set.
			if err := tx.Unscoped().Where("course_progress_id = ?", progress.ID).
				Delete(&models.CompletedContent{}).Error; err != nil {
				return err
			}
			contents := make([]models.CompletedContent, 0, len(input.CompletedContents))
			for _, fileID := range input.CompletedContents {
				contents = append(contents, models.CompletedContent{
					CourseProgressID: progress.ID,
					FileID:           fileID,
				})
			}
			progress.CompletedContents = contents
		}
		return tx.Save(progress).Error
	})
	if err != nil {
		pc.Logger.Printf("progress update failed: %v", err)
		return utils.InternalServerError(c, "Could not update progress")
	}

	return c.JSON(fiber.Map{
		"message":  "Progress updated successfully",
		"progress": progress,
	})
}

// ToggleContentComplete flips one content item's completed state and
// recomputes the percentage from the completed set over the course's
// current content count.
func (pc *ProgressController) ToggleContentComplete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	contentID, err := parseIDParam(c, "contentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid content ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var file models.FileUpload
	if err := pc.DB.Where("id = ? AND course_id = ?", contentID, courseID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Content not found or does not belong to this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	progress, err := pc.getOrCreateProgress(user.ID, courseID)
	if err != nil {
		pc.Logger.Printf("progress lookup failed: %v", err)
		return utils.InternalServerError(c, "Could not load progress")
	}

	completed := false
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.CompletedContent
		lookupErr := tx.Where("course_progress_id = ? AND file_id = ?", progress.ID, contentID).
			First(&existing).Error
		switch {
		case lookupErr == nil:
			if err := tx.Unscoped().Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			completed = true
			if err := tx.Create(&models.CompletedContent{
				CourseProgressID: progress.ID,
				FileID:           contentID,
			}).Error; err != nil {
				return err
			}
		default:
			return lookupErr
		}

		var completedCount, totalCount int64
		if err := tx.Model(&models.CompletedContent{}).
			Where("course_progress_id = ?", progress.ID).
			Count(&completedCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FileUpload{}).
			Where("course_id = ?", courseID).
			Count(&totalCount).Error; err != nil {
			return err
		}

		pct := 0.0
		if totalCount > 0 {
			pct = float64(completedCount) / float64(totalCount) * 100
		}
		return tx.Model(&models.CourseProgress{}).
			Where("id = ?", progress.ID).
			Update("progress", pct).Error
	})
	if err != nil {
		pc.Logger.Printf("content toggle failed: %v", err)
		return utils.InternalServerError(c, "Could not update progress")
	}

	var updated models.CourseProgress
	if err := pc.DB.Preload("CompletedContents").First(&updated, progress.ID).Error; err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	return c.JSON(fiber.Map{
		"message":   "Progress updated successfully",
		"completed": completed,
		"progress":  updated,
	})
}

// ToggleFileProgress flips the independent per-file completion flag.
func (pc *ProgressController) ToggleFileProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	fileID, err := parseIDParam(c, "fileId")
	if err != nil {
		return utils.BadRequest(c, "Invalid file ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var file models.FileUpload
	if err := pc.DB.Where("id = ? AND course_id = ?", fileID, courseID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "File not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var fp models.FileProgress
	err = pc.DB.Where("user_id = ? AND file_id = ? AND course_id = ?", user.ID, fileID, courseID).
		First(&fp).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := nowUTC()
		fp = models.FileProgress{
			UserID:      user.ID,
			FileID:      fileID,
			CourseID:    courseID,
			IsCompleted: true,
			CompletedAt: &now,
		}
		if err := pc.DB.Create(&fp).Error; err != nil {
			pc.Logger.Printf("file progress create failed: %v", err)
			return utils.InternalServerError(c, "Could not update file progress")
		}
	case err != nil:
		return utils.InternalServerError(c, "Could not query database")
	default:
		fp.IsCompleted = !fp.IsCompleted
		if fp.IsCompleted {
			now := nowUTC()
			fp.CompletedAt = &now
		} else {
			fp.CompletedAt = nil
		}
		if err := pc.DB.Save(&fp).Error; err != nil {
			return utils.InternalServerError(c, "Could not update file progress")
		}
	}

	return c.JSON(fiber.Map{
		"message":     "File progress updated",
		"isCompleted": fp.IsCompleted,
		"fileId":      fp.FileID,
		"content_id":  fp.FileID,
	})
}

// ListFileProgress returns the caller's per-file flags for a course.
func (pc *ProgressController) ListFileProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var entries []models.FileProgress
	if err := pc.DB.Where("user_id = ? AND course_id = ?", user.ID, courseID).
		Find(&entries).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(entries)
}
