package controllers

import (
	"errors"
	"log"
	"time"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubmissionsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewSubmissionsController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *SubmissionsController {
	return &SubmissionsController{DB: db, Cfg: cfg, Logger: logger}
}

func (sc *SubmissionsController) GetSubmission(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := parseIDParam(c, "quizId")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var submission models.Submission
	if err := sc.DB.Preload("Answers").
		Where("quiz_id = ? AND user_id = ?", quizID, user.ID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "No submission found for this quiz")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(submission)
}

type submissionAnswerInput struct {
	QuestionID     uint   `json:"questionId"`
	SelectedOption string `json:"selectedOptionId"`
}

func (sc *SubmissionsController) CreateSubmission(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := parseIDParam(c, "quizId")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input struct {
		CourseID       uint                    `json:"courseId"`
		Answers        []submissionAnswerInput `json:"answers"`
		Score          int                     `json:"score"`
		TotalQuestions int                     `json:"totalQuestions"`
		SubmittedOn    time.Time               `json:"submitted_on"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if len(input.Answers) == 0 {
		return utils.BadRequest(c, "Answers are required")
	}
	if input.Score < 0 {
		return utils.BadRequest(c, "Score is required")
	}
	if input.TotalQuestions < 1 {
		return utils.BadRequest(c, "Total questions is required")
	}
	if input.Score > input.TotalQuestions {
		return utils.BadRequest(c, "Score cannot exceed total questions")
	}
	if input.SubmittedOn.IsZero() {
		input.SubmittedOn = nowUTC()
	}

	var quiz models.Quiz
	if err := sc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if quiz.CourseID != input.CourseID {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var existing models.Submission
	if err := sc.DB.Where("quiz_id = ? AND user_id = ?", quizID, user.ID).
		First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Quiz already submitted")
	}

	answers := make([]models.SubmissionAnswer, 0, len(input.Answers))
	for _, a := range input.Answers {
		answers = append(answers, models.SubmissionAnswer{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
		})
	}

	submission := models.Submission{
		QuizID:         quizID,
		CourseID:       input.CourseID,
		UserID:         user.ID,
		Answers:        answers,
		Score:          input.Score,
		TotalQuestions: input.TotalQuestions,
		SubmittedOn:    input.SubmittedOn,
	}
	if err := sc.DB.Create(&submission).Error; err != nil {
		// Unique index on (quiz_id, user_id): a concurrent duplicate
		// fails here instead of slipping past the pre-check.
		return utils.BadRequest(c, "Quiz already submitted")
	}

	return c.Status(fiber.StatusCreated).JSON(submission)
}

func (sc *SubmissionsController) DeleteSubmission(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := parseIDParam(c, "quizId")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var submission models.Submission
	if err := sc.DB.Where("quiz_id = ? AND user_id = ?", quizID, user.ID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "No submission found to delete")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submission.ID).
			Delete(&models.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&submission).Error
	})
	if err != nil {
		sc.Logger.Printf("submission delete failed: %v", err)
		return utils.InternalServerError(c, "Could not delete submission")
	}

	return c.JSON(fiber.Map{"message": "Submission deleted successfully"})
}
