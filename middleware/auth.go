package middleware

import (
	"errors"
	"strings"

	"learnhub/config"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// AuthUser is the resolved identity attached to the request context
// after token verification.
type AuthUser struct {
	ID              uint
	Role            models.Role
	Name            string
	Email           string
	EnrolledCourses []uint
}

func (u *AuthUser) IsEnrolled(courseID uint) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// CurrentUser returns the identity set by AuthMiddleware, or nil on
// routes that are not behind it.
func CurrentUser(c *fiber.Ctx) *AuthUser {
	user, _ := c.Locals(currentUserKey).(*AuthUser)
	return user
}

func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return utils.Unauthorized(c, "Authentication required")
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := utils.ParseJWTToken(tokenString, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Invalid or expired token")
		}

		// A valid token is not enough; the subject must still exist.
		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound(c, "User not found")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		var enrolled []uint
		if err := db.Model(&models.Enrollment{}).
			Where("user_id = ?", user.ID).
			Pluck("course_id", &enrolled).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}

		c.Locals(currentUserKey, &AuthUser{
			ID:              user.ID,
			Role:            user.Role,
			Name:            user.Name,
			Email:           user.Email,
			EnrolledCourses: enrolled,
		})
		return c.Next()
	}
}

// InstructorMiddleware must run after AuthMiddleware.
func InstructorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Authentication required")
		}
		if user.Role != models.RoleInstructor {
			return utils.Forbidden(c, "Instructor access only")
		}
		return c.Next()
	}
}
