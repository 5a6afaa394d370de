package controllers

import (
	"errors"
	"log"
	"strconv"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/storage"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  storage.Service
	Logger *log.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, store storage.Service, logger *log.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Store: store, Logger: logger}
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	title := c.FormValue("title")
	if title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	price, _ := strconv.ParseFloat(c.FormValue("price", "0"), 64)
	durationWeeks, _ := strconv.Atoi(c.FormValue("duration_weeks", "1"))
	if price < 0 {
		return utils.BadRequest(c, "Price cannot be negative")
	}
	if durationWeeks < 1 {
		durationWeeks = 1
	}

	imageURL, imageKey := "", ""
	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			return utils.BadRequest(c, "Could not read image")
		}
		defer src.Close()

		imageKey = storage.NewKey("course-images", file.Filename)
		imageURL, err = cc.Store.Upload(c.Context(), imageKey, file.Header.Get("Content-Type"), src)
		if err != nil {
			cc.Logger.Printf("course image upload failed: %v", err)
			return utils.BadGateway(c, "Failed to upload image")
		}
	}

	course := models.Course{
		Title:           title,
		Price:           price,
		DurationWeeks:   durationWeeks,
		Description:     c.FormValue("description"),
		ImageURL:        imageURL,
		ImageKey:        imageKey,
		InstructorID:    user.ID,
		InstructorName:  user.Name,
		InstructorEmail: user.Email,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		cc.Logger.Printf("course create failed: %v", err)
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	title := c.FormValue("title")
	if title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized to update this course")
	}

	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			return utils.BadRequest(c, "Could not read image")
		}
		defer src.Close()

		newKey := storage.NewKey("course-images", file.Filename)
		newURL, err := cc.Store.Upload(c.Context(), newKey, file.Header.Get("Content-Type"), src)
		if err != nil {
			cc.Logger.Printf("course image upload failed: %v", err)
			return utils.BadGateway(c, "Failed to upload new image")
		}

		// Old image cleanup is best effort.
		if course.ImageKey != "" {
			if err := cc.Store.Delete(c.Context(), course.ImageKey); err != nil {
				cc.Logger.Printf("could not delete old course image %s: %v", course.ImageKey, err)
			}
		}
		course.ImageURL = newURL
		course.ImageKey = newKey
	}

	course.Title = title
	if v := c.FormValue("price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil && price >= 0 {
			course.Price = price
		}
	}
	if v := c.FormValue("duration_weeks"); v != "" {
		if weeks, err := strconv.Atoi(v); err == nil && weeks >= 1 {
			course.DurationWeeks = weeks
		}
	}
	if v := c.FormValue("description"); v != "" {
		course.Description = v
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated successfully",
		"course":  course,
	})
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized to delete this course")
	}

	if course.ImageKey != "" {
		if err := cc.Store.Delete(c.Context(), course.ImageKey); err != nil {
			cc.Logger.Printf("could not delete course image %s: %v", course.ImageKey, err)
		}
	}

	if err := cc.DB.Delete(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return c.JSON(fiber.Map{"message": "Course deleted successfully"})
}

func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Course{})
	if title := c.Query("title"); title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}

	var courses []models.Course
	if err := query.Order("created_at desc").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(courses)
}

func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(course)
}

func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.Role != models.RoleStudent {
		return utils.Forbidden(c, "Only students can enroll in courses")
	}

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if user.IsEnrolled(courseID) {
		return utils.BadRequest(c, "Already enrolled in this course")
	}

	enrollment := models.Enrollment{UserID: user.ID, CourseID: courseID}
	if err := cc.DB.Create(&enrollment).Error; err != nil {
		// The unique index on (user_id, course_id) closes the
		// check-then-insert race under concurrent requests.
		return utils.BadRequest(c, "Already enrolled in this course")
	}

	return c.JSON(fiber.Map{"message": "Successfully enrolled in course"})
}

func (cc *CoursesController) EnrolledCourses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.Role != models.RoleStudent {
		return utils.Forbidden(c, "Only students can view enrolled courses")
	}

	var courses []models.Course
	if err := cc.DB.
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", user.ID).
		Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		var progress models.CourseProgress
		cc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&progress)

		result = append(result, fiber.Map{
			"id":              course.ID,
			"title":           course.Title,
			"price":           course.Price,
			"duration_weeks":  course.DurationWeeks,
			"description":     course.Description,
			"image_url":       course.ImageURL,
			"instructor_name": course.InstructorName,
			"progress":        progress.Progress,
		})
	}
	return c.JSON(result)
}
