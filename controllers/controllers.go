package controllers

import (
	"strconv"
	"time"

	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func fiberFormInt(c *fiber.Ctx, name string) (int, error) {
	return strconv.Atoi(c.FormValue(name))
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func enrolledCourseIDs(db *gorm.DB, userID uint) []uint {
	var ids []uint
	db.Model(&models.Enrollment{}).Where("user_id = ?", userID).Pluck("course_id", &ids)
	return ids
}

func userPayload(db *gorm.DB, user *models.User) fiber.Map {
	return fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"profilePic":      user.ProfilePic,
		"bio":             user.Bio,
		"role":            user.Role,
		"enrolledCourses": enrolledCourseIDs(db, user.ID),
	}
}
