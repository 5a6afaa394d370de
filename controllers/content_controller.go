package controllers

import (
	"errors"
	"log"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/storage"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ContentController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  storage.Service
	Logger *log.Logger
}

func NewContentController(db *gorm.DB, cfg *config.Config, store storage.Service, logger *log.Logger) *ContentController {
	return &ContentController{DB: db, Cfg: cfg, Store: store, Logger: logger}
}

func (cc *ContentController) findCourse(c *fiber.Ctx, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Course not found")
		}
		return nil, utils.InternalServerError(c, "Could not query database")
	}
	return &course, nil
}

func (cc *ContentController) UploadFile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, errResp := cc.findCourse(c, courseID)
	if course == nil {
		return errResp
	}
	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized: You are not the instructor of this course")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "No file uploaded")
	}

	contentType := c.FormValue("contentType", models.ContentTypeFile)
	if !models.ValidContentType(contentType) {
		return utils.BadRequest(c, "Invalid content type")
	}

	src, err := file.Open()
	if err != nil {
		return utils.BadRequest(c, "Could not read uploaded file")
	}
	defer src.Close()

	// The object is written before the database row; a storage failure
	// aborts the request and leaves no orphan record.
	key := storage.NewKey("course_files", file.Filename)
	fileURL, err := cc.Store.Upload(c.Context(), key, file.Header.Get("Content-Type"), src)
	if err != nil {
		cc.Logger.Printf("content upload failed for course %d: %v", courseID, err)
		return utils.BadGateway(c, "Failed to upload file")
	}

	upload := models.FileUpload{
		CourseID:    courseID,
		FileName:    file.Filename,
		FileURL:     fileURL,
		ObjectKey:   key,
		ContentType: contentType,
		UploadedBy:  user.ID,
		UploadedAt:  nowUTC(),
	}
	if err := cc.DB.Create(&upload).Error; err != nil {
		cc.Logger.Printf("content record create failed: %v", err)
		return utils.InternalServerError(c, "Could not save file record")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "File uploaded successfully",
		"file":    upload,
	})
}

func (cc *ContentController) ListContent(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, errResp := cc.findCourse(c, courseID)
	if course == nil {
		return errResp
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var contents []models.FileUpload
	if err := cc.DB.Where("course_id = ?", courseID).Order("uploaded_at asc").Find(&contents).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(contents))
	for _, content := range contents {
		result = append(result, fiber.Map{
			"content_id":   content.ID,
			"content_type": content.ContentType,
			"file_name":    content.FileName,
			"file_url":     content.FileURL,
			"uploaded_at":  content.UploadedAt,
		})
	}
	return c.JSON(result)
}

func (cc *ContentController) DeleteContent(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	contentID, err := parseIDParam(c, "contentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid content ID")
	}

	course, errResp := cc.findCourse(c, courseID)
	if course == nil {
		return errResp
	}
	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized: You are not the instructor of this course")
	}

	var content models.FileUpload
	if err := cc.DB.Where("id = ? AND course_id = ?", contentID, courseID).First(&content).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Content not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.Store.Delete(c.Context(), content.ObjectKey); err != nil {
		cc.Logger.Printf("could not delete object %s: %v", content.ObjectKey, err)
	}

	if err := cc.DB.Delete(&content).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete content")
	}
	return c.JSON(fiber.Map{"message": "Content deleted successfully"})
}

func (cc *ContentController) DownloadFile(c *fiber.Ctx) error {
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
	if err := cc.DB.Where("id = ? AND course_id = ?", fileID, courseID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "File not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	signedURL, err := cc.Store.SignedDownloadURL(file.ObjectKey, storage.SignedURLLifetime)
	if err != nil {
		cc.Logger.Printf("could not sign URL for %s: %v", file.ObjectKey, err)
		return utils.BadGateway(c, "Could not generate download link")
	}

	return c.Redirect(signedURL, fiber.StatusFound)
}
