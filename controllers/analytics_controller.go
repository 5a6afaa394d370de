package controllers

import (
	"log"
	"math"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Logger: logger}
}

// InstructorAnalytics aggregates the caller's courses into dashboard
// stats: distinct student count, average rating to one decimal, gross
// revenue, and course count.
func (ac *AnalyticsController) InstructorAnalytics(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var courseIDs []uint
	if err := ac.DB.Model(&models.Course{}).
		Where("instructor_id = ?", user.ID).
		Pluck("id", &courseIDs).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if len(courseIDs) == 0 {
		return c.JSON(fiber.Map{
			"stats": fiber.Map{
				"totalStudents": 0,
				"averageRating": 0.0,
				"totalRevenue":  0.0,
				"courseCount":   0,
			},
		})
	}

	var totalStudents int64
	if err := ac.DB.Model(&models.Enrollment{}).
		Joins("JOIN users ON users.id = enrollments.user_id").
		Where("enrollments.course_id IN ? AND users.role = ?", courseIDs, models.RoleStudent).
		Distinct("enrollments.user_id").
		Count(&totalStudents).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	// Zero ratings mean "not rated" and are excluded from the average.
	var avgRating float64
	row := ac.DB.Model(&models.CourseProgress{}).
		Where("course_id IN ? AND user_rating > 0", courseIDs).
		Select("COALESCE(AVG(user_rating), 0)").Row()
	if err := row.Scan(&avgRating); err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	type revenueRow struct {
		CourseID    uint
		Price       float64
		Enrollments int64
	}
	var rows []revenueRow
	if err := ac.DB.Model(&models.Course{}).
		Select("courses.id AS course_id, courses.price AS price, COUNT(enrollments.id) AS enrollments").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Where("courses.id IN ?", courseIDs).
		Group("courses.id, courses.price").
		Scan(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	totalRevenue := 0.0
	for _, r := range rows {
		totalRevenue += r.Price * float64(r.Enrollments)
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"totalStudents": totalStudents,
			"averageRating": math.Round(avgRating*10) / 10,
			"totalRevenue":  totalRevenue,
			"courseCount":   len(courseIDs),
		},
	})
}
