package controllers_test

import (
	"testing"

	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndSignin(t *testing.T) {
	env := newTestEnv(t)

	req := formRequest(t, "POST", "/api/auth/signup", "", map[string]string{
		"name":            "Alice",
		"email":           "alice@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
		"role":            "student",
	}, "", "")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, "Registration successful!", result["message"])

	// Signin with the registered credentials
	resp, err = env.app.Test(jsonRequest("POST", "/api/auth/signin", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result = decodeBody(t, resp)
	assert.NotEmpty(t, result["token"])
	user := result["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "student", user["role"])
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bob", models.RoleStudent)

	req := formRequest(t, "POST", "/api/auth/signup", "", map[string]string{
		"name":            "Bob Again",
		"email":           "bob@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
		"role":            "student",
	}, "", "")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, "Email is already taken", result["message"])
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	req := formRequest(t, "POST", "/api/auth/signup", "", map[string]string{
		"name":            "Mallory",
		"email":           "mallory@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
		"role":            "admin",
	}, "", "")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSigninWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "carol", models.RoleStudent)

	resp, err := env.app.Test(jsonRequest("POST", "/api/auth/signin", "", map[string]string{
		"email":    "carol@example.com",
		"password": "wrong-password",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, "Invalid email or password", result["message"])
}

func TestProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(jsonRequest("GET", "/api/auth/profile", "", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest("GET", "/api/auth/profile", "not-a-token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "dave", models.RoleInstructor)

	resp, err := env.app.Test(jsonRequest("GET", "/api/auth/profile", token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, user.Name, result["name"])
	assert.Equal(t, "instructor", result["role"])
}
