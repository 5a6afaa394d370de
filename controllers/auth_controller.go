package controllers

import (
	"errors"
	"log"
	"mime/multipart"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/storage"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  storage.Service
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, store storage.Service, logger *log.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Store: store, Logger: logger}
}

type signupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Role            string `json:"role" validate:"required"`
	Bio             string `json:"bio"`
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	input := signupInput{
		Name:            c.FormValue("name"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirmPassword"),
		Role:            c.FormValue("role"),
		Bio:             c.FormValue("bio"),
	}

	if errs := utils.ValidateStruct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if input.Password != input.ConfirmPassword {
		return utils.BadRequest(c, "Passwords do not match")
	}
	role := models.Role(input.Role)
	if !role.Valid() {
		return utils.BadRequest(c, "Role must be student or instructor")
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Email is already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	profilePicURL := ""
	if file, err := c.FormFile("profilePic"); err == nil {
		profilePicURL, err = ac.uploadProfilePic(c, file)
		if err != nil {
			ac.Logger.Printf("profile picture upload failed: %v", err)
			return utils.BadGateway(c, "Error uploading profile picture")
		}
	}

	user := models.User{
		Name:       input.Name,
		Email:      input.Email,
		Password:   string(hashedPassword),
		Role:       role,
		ProfilePic: profilePicURL,
		Bio:        input.Bio,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		ac.Logger.Printf("signup failed for %s: %v", input.Email, err)
		return utils.InternalServerError(c, "Could not create user")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Registration successful!"})
}

func (ac *AuthController) uploadProfilePic(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := storage.NewKey("profile_pics", file.Filename)
	return ac.Store.Upload(c.Context(), key, file.Header.Get("Content-Type"), src)
}

func (ac *AuthController) Signin(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Please fill all the required fields")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest(c, "Invalid email or password")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return utils.BadRequest(c, "Invalid email or password")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userPayload(ac.DB, &user),
	})
}

func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	authUser := middleware.CurrentUser(c)

	var user models.User
	if err := ac.DB.First(&user, authUser.ID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}
	return c.JSON(userPayload(ac.DB, &user))
}

func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	authUser := middleware.CurrentUser(c)

	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Bio   string `json:"bio"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.First(&user, authUser.ID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}

	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}
	return c.JSON(userPayload(ac.DB, &user))
}

func (ac *AuthController) UpdateProfilePicture(c *fiber.Ctx) error {
	authUser := middleware.CurrentUser(c)

	file, err := c.FormFile("profilePic")
	if err != nil {
		return utils.BadRequest(c, "No file uploaded")
	}

	url, err := ac.uploadProfilePic(c, file)
	if err != nil {
		ac.Logger.Printf("profile picture upload failed: %v", err)
		return utils.BadGateway(c, "Error uploading profile picture")
	}

	var user models.User
	if err := ac.DB.First(&user, authUser.ID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}
	user.ProfilePic = url
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}
	return c.JSON(userPayload(ac.DB, &user))
}

func (ac *AuthController) GetUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(userPayload(ac.DB, &user))
}
