package controllers_test

import (
	"fmt"
	"testing"

	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuizBody() map[string]interface{} {
	return map[string]interface{}{
		"title":    "Week 1 Quiz",
		"duration": "00:30:00",
		"questions": []map[string]interface{}{
			{
				"qContent": "What is a goroutine?",
				"options": []map[string]interface{}{
					{"text": "A lightweight thread", "correct": true},
					{"text": "A package manager", "correct": false},
				},
			},
		},
	}
}

func TestCreateQuiz(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "quizmaster", models.RoleInstructor)
	course := env.createCourse(t, instructor, "Quiz Course", 0)

	target := fmt.Sprintf("/api/quizzes/course/%d", course.ID)
	resp, err := env.app.Test(jsonRequest("POST", target, token, validQuizBody()))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, "Quiz created successfully", result["message"])
	quiz := result["quiz"].(map[string]interface{})
	assert.Equal(t, "Week 1 Quiz", quiz["title"])
	assert.Len(t, quiz["questions"].([]interface{}), 1)
}

func TestCreateQuizValidationMessages(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "quizmaster2", models.RoleInstructor)
	course := env.createCourse(t, instructor, "Quiz Course 2", 0)
	target := fmt.Sprintf("/api/quizzes/course/%d", course.ID)

	cases := []struct {
		name      string
		questions []map[string]interface{}
		message   string
	}{
		{
			name:      "no questions",
			questions: []map[string]interface{}{},
			message:   "At least one question is required",
		},
		{
			name: "empty content",
			questions: []map[string]interface{}{
				{"qContent": "  ", "options": []map[string]interface{}{{"text": "A", "correct": true}}},
			},
			message: "Question 1: Content is required",
		},
		{
			name: "no options",
			questions: []map[string]interface{}{
				{"qContent": "Q1", "options": []map[string]interface{}{{"text": "A", "correct": true}}},
				{"qContent": "Q2", "options": []map[string]interface{}{}},
			},
			message: "Question 2: At least one option is required",
		},
		{
			name: "empty option text",
			questions: []map[string]interface{}{
				{"qContent": "Q1", "options": []map[string]interface{}{
					{"text": "A", "correct": true},
					{"text": "", "correct": false},
				}},
			},
			message: "Question 1, Option 2: Text is required",
		},
		{
			name: "no correct option",
			questions: []map[string]interface{}{
				{"qContent": "Q1", "options": []map[string]interface{}{
					{"text": "A", "correct": false},
				}},
			},
			message: "Question 1: At least one correct option is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := map[string]interface{}{
				"title":     "Invalid Quiz",
				"questions": tc.questions,
			}
			resp, err := env.app.Test(jsonRequest("POST", target, token, body))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.message, decodeBody(t, resp)["message"])
		})
	}
}

func TestListQuizzesRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	instructor, instructorToken := env.createUser(t, "quizmaster3", models.RoleInstructor)
	student, studentToken := env.createUser(t, "quizstudent", models.RoleStudent)
	course := env.createCourse(t, instructor, "Gated Course", 0)

	createTarget := fmt.Sprintf("/api/quizzes/course/%d", course.ID)
	resp, err := env.app.Test(jsonRequest("POST", createTarget, instructorToken, validQuizBody()))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Before enrollment the student is rejected
	resp, err = env.app.Test(jsonRequest("GET", createTarget, studentToken, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not enrolled in this course", decodeBody(t, resp)["message"])

	// After enrollment the same request succeeds
	env.enroll(t, student, course)
	resp, err = env.app.Test(jsonRequest("GET", createTarget, studentToken, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateQuizOtherInstructorForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createUser(t, "quizowner", models.RoleInstructor)
	_, otherToken := env.createUser(t, "quizother", models.RoleInstructor)
	course := env.createCourse(t, owner, "Protected Course", 0)

	target := fmt.Sprintf("/api/quizzes/course/%d", course.ID)
	resp, err := env.app.Test(jsonRequest("POST", target, otherToken, validQuizBody()))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteQuiz(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "quizmaster4", models.RoleInstructor)
	course := env.createCourse(t, instructor, "Deletable", 0)

	createTarget := fmt.Sprintf("/api/quizzes/course/%d", course.ID)
	resp, err := env.app.Test(jsonRequest("POST", createTarget, token, validQuizBody()))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	quizID := decodeBody(t, resp)["quiz"].(map[string]interface{})["ID"].(float64)

	resp, err = env.app.Test(jsonRequest("DELETE", fmt.Sprintf("/api/quizzes/%d", int(quizID)), token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	env.db.Model(&models.QuizQuestion{}).Where("quiz_id = ?", uint(quizID)).Count(&count)
	assert.Zero(t, count)
}
