package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *QuizzesController {
	return &QuizzesController{DB: db, Cfg: cfg, Logger: logger}
}

type quizOptionInput struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type quizQuestionInput struct {
	Content string            `json:"qContent"`
	Options []quizOptionInput `json:"options"`
}

type quizInput struct {
	Title     string              `json:"title"`
	Duration  string              `json:"duration"`
	Questions []quizQuestionInput `json:"questions"`
}

// validateQuestions applies the quiz authoring rules. Indexes in the
// returned message are 1-based.
func validateQuestions(questions []quizQuestionInput) error {
	if len(questions) == 0 {
		return errors.New("At least one question is required")
	}
	for i, question := range questions {
		if strings.TrimSpace(question.Content) == "" {
			return fmt.Errorf("Question %d: Content is required", i+1)
		}
		if len(question.Options) == 0 {
			return fmt.Errorf("Question %d: At least one option is required", i+1)
		}
		hasCorrect := false
		for j, option := range question.Options {
			if strings.TrimSpace(option.Text) == "" {
				return fmt.Errorf("Question %d, Option %d: Text is required", i+1, j+1)
			}
			if option.Correct {
				hasCorrect = true
			}
		}
		if !hasCorrect {
			return fmt.Errorf("Question %d: At least one correct option is required", i+1)
		}
	}
	return nil
}

func buildQuestions(inputs []quizQuestionInput) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0, len(inputs))
	for i, q := range inputs {
		question := models.QuizQuestion{
			Content:       strings.TrimSpace(q.Content),
			SequenceOrder: i + 1,
		}
		for j, o := range q.Options {
			question.Options = append(question.Options, models.QuizOption{
				Text:          strings.TrimSpace(o.Text),
				Correct:       o.Correct,
				SequenceOrder: j + 1,
			})
		}
		questions = append(questions, question)
	}
	return questions
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input quizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if strings.TrimSpace(input.Title) == "" {
		return utils.BadRequest(c, "Title is required")
	}

	var course models.Course
	if err := qc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized: You are not the instructor of this course")
	}

	if err := validateQuestions(input.Questions); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	quiz := models.Quiz{
		CourseID:     courseID,
		InstructorID: user.ID,
		Title:        strings.TrimSpace(input.Title),
		Duration:     input.Duration,
		Questions:    buildQuestions(input.Questions),
	}
	if err := qc.DB.Create(&quiz).Error; err != nil {
		qc.Logger.Printf("quiz create failed: %v", err)
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Quiz created successfully",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) ListQuizzes(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := qc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(courseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var quizzes []models.Quiz
	if err := qc.DB.Where("course_id = ?", courseID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order asc") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order asc") }).
		Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(quizzes)
}

func (qc *QuizzesController) GetQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := parseIDParam(c, "quizId")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order asc") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order asc") }).
		First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if user.Role == models.RoleStudent && !user.IsEnrolled(quiz.CourseID) {
		return utils.Forbidden(c, "Not enrolled in this course")
	}
	return c.JSON(quiz)
}

func (qc *QuizzesController) UpdateQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := parseIDParam(c, "quizId")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input quizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if quiz.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized: You are not the instructor of this quiz")
	}

	if input.Questions != nil {
		if err := validateQuestions(input.Questions); err != nil {
			return utils.BadRequest(c, err.Error())
		}
	}

	if input.Title != "" {
		quiz.Title = strings.TrimSpace(input.Title)
	}
	if input.Duration != "" {
		quiz.Duration = input.Duration
	}

	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if input.Questions != nil {
			if err := qc.deleteQuestions(tx, quiz.ID); err != nil {
				return err
			}
			quiz.Questions = buildQuestions(input.Questions)
		}
		return tx.Save(&quiz).Error
	})
	if err != nil {
		qc.Logger.Printf("quiz update failed: %v", err)
		return utils.InternalServerError(c, "Could not update quiz")
	}

	return c.JSON(fiber.Map{
		"message": "Quiz updated successfully",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) DeleteQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := parseIDParam(c, "quizId")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if quiz.InstructorID != user.ID {
		return utils.Forbidden(c, "Unauthorized: You are not the instructor of this quiz")
	}

	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if err := qc.deleteQuestions(tx, quiz.ID); err != nil {
			return err
		}
		return tx.Delete(&quiz).Error
	})
	if err != nil {
		qc.Logger.Printf("quiz delete failed: %v", err)
		return utils.InternalServerError(c, "Could not delete quiz")
	}

	return c.JSON(fiber.Map{"message": "Quiz deleted successfully"})
}

func (qc *QuizzesController) deleteQuestions(tx *gorm.DB, quizID uint) error {
	var questionIDs []uint
	if err := tx.Model(&models.QuizQuestion{}).
		Where("quiz_id = ?", quizID).
		Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("quiz_question_id IN ?", questionIDs).Delete(&models.QuizOption{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error
}
