package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/storage"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssignmentsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  storage.Service
	Logger *log.Logger
}

func NewAssignmentsController(db *gorm.DB, cfg *config.Config, store storage.Service, logger *log.Logger) *AssignmentsController {
	return &AssignmentsController{DB: db, Cfg: cfg, Store: store, Logger: logger}
}

func (ac *AssignmentsController) findAssignment(c *fiber.Ctx, assignmentID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := ac.DB.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Assignment not found")
		}
		return nil, utils.InternalServerError(c, "Could not query database")
	}
	return &assignment, nil
}

// requireCourseOwner loads the assignment's course and checks the caller
// is its instructor.
func (ac *AssignmentsController) requireCourseOwner(c *fiber.Ctx, courseID, userID uint) error {
	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.InstructorID != userID {
		return utils.Forbidden(c, "Unauthorized: You are not the instructor of this course")
	}
	return nil
}

func (ac *AssignmentsController) ListAssignments(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var assignments []models.Assignment
	if err := ac.DB.Where("course_id = ?", courseID).Order("due_date asc").Find(&assignments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(assignments)
}

// ListAssignmentsForStudent annotates each assignment with the caller's
// own submission, if any.
func (ac *AssignmentsController) ListAssignmentsForStudent(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var assignments []models.Assignment
	if err := ac.DB.Where("course_id = ?", courseID).Order("due_date asc").Find(&assignments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(assignments))
	for _, assignment := range assignments {
		entry := fiber.Map{
			"id":          assignment.ID,
			"title":       assignment.Title,
			"description": assignment.Description,
			"totalMarks":  assignment.TotalMarks,
			"dueDate":     assignment.DueDate,
			"file":        assignment.FileURL,
			"submitted":   false,
		}
		var submission models.AssignmentSubmission
		if err := ac.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).
			First(&submission).Error; err == nil {
			entry["submitted"] = true
			entry["submittedOn"] = submission.SubmittedOn
			entry["marks"] = submission.Marks
			entry["submissionFile"] = submission.FileURL
		}
		result = append(result, entry)
	}
	return c.JSON(result)
}

func (ac *AssignmentsController) GetAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}

	user := middleware.CurrentUser(c)
	if user.Role == models.RoleStudent && !user.IsEnrolled(assignment.CourseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}
	return c.JSON(assignment)
}

func (ac *AssignmentsController) CreateAssignment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	if err := ac.requireCourseOwner(c, courseID, user.ID); err != nil {
		return err
	}

	title := c.FormValue("title")
	if title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	totalMarks, err := fiberFormInt(c, "totalMarks")
	if err != nil || totalMarks < 1 {
		return utils.BadRequest(c, "Total marks must be a positive number")
	}

	dueDate, err := time.Parse(time.RFC3339, c.FormValue("dueDate"))
	if err != nil {
		return utils.BadRequest(c, "Invalid due date")
	}

	fileURL, objectKey := "", ""
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return utils.BadRequest(c, "Could not read uploaded file")
		}
		defer src.Close()

		objectKey = storage.NewKey("assignments", file.Filename)
		fileURL, err = ac.Store.Upload(c.Context(), objectKey, file.Header.Get("Content-Type"), src)
		if err != nil {
			ac.Logger.Printf("assignment file upload failed: %v", err)
			return utils.BadGateway(c, "Failed to upload file")
		}
	}

	assignment := models.Assignment{
		CourseID:    courseID,
		Title:       title,
		Description: c.FormValue("description"),
		TotalMarks:  totalMarks,
		DueDate:     dueDate,
		FileURL:     fileURL,
		ObjectKey:   objectKey,
	}
	if err := ac.DB.Create(&assignment).Error; err != nil {
		ac.Logger.Printf("assignment create failed: %v", err)
		return utils.InternalServerError(c, "Could not create assignment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Assignment created successfully",
		"assignment": assignment,
	})
}

func (ac *AssignmentsController) UpdateAssignment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}
	if err := ac.requireCourseOwner(c, assignment.CourseID, user.ID); err != nil {
		return err
	}

	if v := c.FormValue("title"); v != "" {
		assignment.Title = v
	}
	if v := c.FormValue("description"); v != "" {
		assignment.Description = v
	}
	if v := c.FormValue("totalMarks"); v != "" {
		marks, err := fiberFormInt(c, "totalMarks")
		if err != nil || marks < 1 {
			return utils.BadRequest(c, "Total marks must be a positive number")
		}
		assignment.TotalMarks = marks
	}
	if v := c.FormValue("dueDate"); v != "" {
		dueDate, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.BadRequest(c, "Invalid due date")
		}
		assignment.DueDate = dueDate
	}

	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return utils.BadRequest(c, "Could not read uploaded file")
		}
		defer src.Close()

		newKey := storage.NewKey("assignments", file.Filename)
		newURL, err := ac.Store.Upload(c.Context(), newKey, file.Header.Get("Content-Type"), src)
		if err != nil {
			ac.Logger.Printf("assignment file upload failed: %v", err)
			return utils.BadGateway(c, "Failed to upload file")
		}
		if assignment.ObjectKey != "" {
			if err := ac.Store.Delete(c.Context(), assignment.ObjectKey); err != nil {
				ac.Logger.Printf("could not delete old assignment file %s: %v", assignment.ObjectKey, err)
			}
		}
		assignment.FileURL = newURL
		assignment.ObjectKey = newKey
	}

	if err := ac.DB.Save(assignment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update assignment")
	}

	return c.JSON(fiber.Map{
		"message":    "Assignment updated successfully",
		"assignment": assignment,
	})
}

func (ac *AssignmentsController) DeleteAssignment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}
	if err := ac.requireCourseOwner(c, assignment.CourseID, user.ID); err != nil {
		return err
	}

	if assignment.ObjectKey != "" {
		if err := ac.Store.Delete(c.Context(), assignment.ObjectKey); err != nil {
			ac.Logger.Printf("could not delete assignment file %s: %v", assignment.ObjectKey, err)
		}
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignment.ID).
			Delete(&models.AssignmentSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(assignment).Error
	})
	if err != nil {
		ac.Logger.Printf("assignment delete failed: %v", err)
		return utils.InternalServerError(c, "Could not delete assignment")
	}

	return c.JSON(fiber.Map{"message": "Assignment deleted successfully"})
}

func (ac *AssignmentsController) SubmitAssignment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.Role != models.RoleStudent {
		return utils.Forbidden(c, "Only students can submit assignments")
	}

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}
	if !user.IsEnrolled(assignment.CourseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var existing models.AssignmentSubmission
	if err := ac.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).
		First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Assignment already submitted")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "No file uploaded")
	}
	src, err := file.Open()
	if err != nil {
		return utils.BadRequest(c, "Could not read uploaded file")
	}
	defer src.Close()

	objectKey := storage.NewKey("assignment-submissions", file.Filename)
	fileURL, err := ac.Store.Upload(c.Context(), objectKey, file.Header.Get("Content-Type"), src)
	if err != nil {
		ac.Logger.Printf("assignment submission upload failed: %v", err)
		return utils.BadGateway(c, "Failed to upload file")
	}

	// Identity fields come from the authenticated user, never from the
	// request body.
	submission := models.AssignmentSubmission{
		AssignmentID: assignment.ID,
		CourseID:     assignment.CourseID,
		StudentID:    user.ID,
		StudentName:  user.Name,
		StudentEmail: user.Email,
		SubmittedOn:  nowUTC(),
		FileURL:      fileURL,
		ObjectKey:    objectKey,
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		return tx.Model(assignment).
			UpdateColumn("submissions_count", gorm.Expr("submissions_count + ?", 1)).Error
	})
	if err != nil {
		// Unique index on (assignment_id, student_id): a concurrent
		// duplicate fails here instead of slipping past the pre-check.
		var again models.AssignmentSubmission
		if lookupErr := ac.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).
			First(&again).Error; lookupErr == nil {
			return utils.BadRequest(c, "Assignment already submitted")
		}
		ac.Logger.Printf("assignment submission create failed: %v", err)
		return utils.InternalServerError(c, "Could not submit assignment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Assignment submitted successfully",
		"submission": submission,
	})
}

func (ac *AssignmentsController) ListSubmissions(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}
	if err := ac.requireCourseOwner(c, assignment.CourseID, user.ID); err != nil {
		return err
	}

	var submissions []models.AssignmentSubmission
	if err := ac.DB.Where("assignment_id = ?", assignment.ID).
		Order("submitted_on asc").Find(&submissions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(submissions)
}

func (ac *AssignmentsController) GradeSubmission(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}
	submissionID, err := parseIDParam(c, "submissionId")
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}
	if err := ac.requireCourseOwner(c, assignment.CourseID, user.ID); err != nil {
		return err
	}

	var input struct {
		Marks *int `json:"marks"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Marks == nil {
		return utils.BadRequest(c, "Marks are required")
	}
	if *input.Marks < 0 {
		return utils.BadRequest(c, "Marks cannot be negative")
	}
	if *input.Marks > assignment.TotalMarks {
		return utils.BadRequest(c, fmt.Sprintf("Marks cannot exceed %d", assignment.TotalMarks))
	}

	var submission models.AssignmentSubmission
	if err := ac.DB.Where("id = ? AND assignment_id = ?", submissionID, assignment.ID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Submission not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	now := nowUTC()
	submission.Marks = input.Marks
	submission.GradedAt = &now
	if err := ac.DB.Save(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not grade submission")
	}

	return c.JSON(fiber.Map{
		"message":    "Submission graded successfully",
		"submission": submission,
	})
}

// DownloadAssignmentFile returns a short-lived signed URL for the
// assignment's attached file.
func (ac *AssignmentsController) DownloadAssignmentFile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}
	if user.Role == models.RoleStudent && !user.IsEnrolled(assignment.CourseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}
	if assignment.ObjectKey == "" {
		return utils.NotFound(c, "No assignment file available")
	}

	signedURL, err := ac.Store.SignedDownloadURL(assignment.ObjectKey, storage.SignedURLLifetime)
	if err != nil {
		ac.Logger.Printf("could not sign URL for %s: %v", assignment.ObjectKey, err)
		return utils.BadGateway(c, "Could not generate download link")
	}
	return c.JSON(fiber.Map{"signedUrl": signedURL})
}

// DownloadSubmissionFile signs a download link for one student
// submission. Instructors can fetch any submission on their course;
// students only their own.
func (ac *AssignmentsController) DownloadSubmissionFile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}
	submissionID, err := parseIDParam(c, "submissionId")
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	assignment, errResp := ac.findAssignment(c, assignmentID)
	if assignment == nil {
		return errResp
	}

	var submission models.AssignmentSubmission
	if err := ac.DB.Where("id = ? AND assignment_id = ?", submissionID, assignment.ID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Submission not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if user.Role == models.RoleStudent && submission.StudentID != user.ID {
		return utils.Forbidden(c, "Unauthorized to access this submission")
	}
	if user.Role == models.RoleInstructor {
		var course models.Course
		if err := ac.DB.First(&course, assignment.CourseID).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		if course.InstructorID != user.ID {
			return utils.Forbidden(c, "Unauthorized to access this submission")
		}
	}
	if submission.ObjectKey == "" {
		return utils.NotFound(c, "No submission file available")
	}

	signedURL, err := ac.Store.SignedDownloadURL(submission.ObjectKey, storage.SignedURLLifetime)
	if err != nil {
		ac.Logger.Printf("could not sign URL for %s: %v", submission.ObjectKey, err)
		return utils.BadGateway(c, "Could not generate download link")
	}
	return c.JSON(fiber.Map{"signedUrl": signedURL})
}
