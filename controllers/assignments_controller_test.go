package controllers_test

import (
	"fmt"
	"testing"
	"time"

	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAssignmentFixture(t *testing.T, env *testEnv, course *models.Course, totalMarks int) *models.Assignment {
	t.Helper()

	assignment := &models.Assignment{
		CourseID:   course.ID,
		Title:      "Fixture Assignment",
		TotalMarks: totalMarks,
		DueDate:    time.Now().UTC().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, env.db.Create(assignment).Error)
	return assignment
}

func TestCreateAssignment(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "asinstructor", models.RoleInstructor)
	course := env.createCourse(t, instructor, "Assignment Course", 0)

	due := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	req := formRequest(t, "POST", fmt.Sprintf("/api/courses/%d/assignments", course.ID), token, map[string]string{
		"title":      "Homework 1",
		"totalMarks": "100",
		"dueDate":    due,
	}, "file", "brief.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)
	assignment := result["assignment"].(map[string]interface{})
	assert.Equal(t, "Homework 1", assignment["title"])
	assert.Equal(t, 100.0, assignment["totalMarks"])
	assert.NotEmpty(t, assignment["file"])
}

func TestSubmitAssignment(t *testing.T) {
	env := newTestEnv(t)
	instructor, _ := env.createUser(t, "asinstructor2", models.RoleInstructor)
	student, token := env.createUser(t, "asstudent2", models.RoleStudent)
	course := env.createCourse(t, instructor, "Submittable", 0)
	env.enroll(t, student, course)
	assignment := createAssignmentFixture(t, env, course, 50)

	req := formRequest(t, "POST", fmt.Sprintf("/api/assignments/%d/submit", assignment.ID), token,
		nil, "file", "answer.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)
	submission := result["submission"].(map[string]interface{})
	assert.Equal(t, student.Name, submission["studentName"])
	assert.Equal(t, student.Email, submission["studentEmail"])

	var updated models.Assignment
	require.NoError(t, env.db.First(&updated, assignment.ID).Error)
	assert.Equal(t, 1, updated.SubmissionsCount)
}

func TestSubmitAssignmentOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	instructor, _ := env.createUser(t, "asinstructor9", models.RoleInstructor)
	student, token := env.createUser(t, "asstudent9", models.RoleStudent)
	course := env.createCourse(t, instructor, "Once Only", 0)
	env.enroll(t, student, course)
	assignment := createAssignmentFixture(t, env, course, 50)

	target := fmt.Sprintf("/api/assignments/%d/submit", assignment.ID)
	req := formRequest(t, "POST", target, token, nil, "file", "answer.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = formRequest(t, "POST", target, token, nil, "file", "answer2.pdf")
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Assignment already submitted", decodeBody(t, resp)["message"])

	var updated models.Assignment
	require.NoError(t, env.db.First(&updated, assignment.ID).Error)
	assert.Equal(t, 1, updated.SubmissionsCount)
}

func TestSubmitAssignmentNotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	instructor, _ := env.createUser(t, "asinstructor3", models.RoleInstructor)
	_, token := env.createUser(t, "asstudent3", models.RoleStudent)
	course := env.createCourse(t, instructor, "Locked", 0)
	assignment := createAssignmentFixture(t, env, course, 50)

	req := formRequest(t, "POST", fmt.Sprintf("/api/assignments/%d/submit", assignment.ID), token,
		nil, "file", "answer.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not enrolled in this course", decodeBody(t, resp)["message"])
}

func TestGradeSubmissionBounds(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "asinstructor4", models.RoleInstructor)
	student, studentToken := env.createUser(t, "asstudent4", models.RoleStudent)
	course := env.createCourse(t, instructor, "Gradable", 0)
	env.enroll(t, student, course)
	assignment := createAssignmentFixture(t, env, course, 40)

	req := formRequest(t, "POST", fmt.Sprintf("/api/assignments/%d/submit", assignment.ID), studentToken,
		nil, "file", "answer.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	submissionID := decodeBody(t, resp)["submission"].(map[string]interface{})["ID"].(float64)

	gradeTarget := fmt.Sprintf("/api/assignments/%d/submissions/%d/grade", assignment.ID, int(submissionID))

	// Over the maximum is rejected
	resp, err = env.app.Test(jsonRequest("PUT", gradeTarget, token, map[string]int{"marks": 41}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Marks cannot exceed 40", decodeBody(t, resp)["message"])

	// Exactly the maximum is accepted
	resp, err = env.app.Test(jsonRequest("PUT", gradeTarget, token, map[string]int{"marks": 40}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	submission := result["submission"].(map[string]interface{})
	assert.Equal(t, 40.0, submission["marks"])
	assert.NotNil(t, submission["gradedAt"])
}

func TestAssignmentDownloadNoFile(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "asinstructor5", models.RoleInstructor)
	course := env.createCourse(t, instructor, "No File", 0)
	assignment := createAssignmentFixture(t, env, course, 10)

	resp, err := env.app.Test(jsonRequest("GET", fmt.Sprintf("/api/assignments/%d/download", assignment.ID), token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No assignment file available", decodeBody(t, resp)["message"])
}

func TestAssignmentDownloadSignedURL(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "asinstructor6", models.RoleInstructor)
	course := env.createCourse(t, instructor, "With File", 0)

	assignment := &models.Assignment{
		CourseID:   course.ID,
		Title:      "Download Me",
		TotalMarks: 10,
		DueDate:    time.Now().UTC().Add(24 * time.Hour),
		FileURL:    "https://storage.test/assignments/brief.pdf",
		ObjectKey:  "assignments/brief.pdf",
	}
	require.NoError(t, env.db.Create(assignment).Error)

	resp, err := env.app.Test(jsonRequest("GET", fmt.Sprintf("/api/assignments/%d/download", assignment.ID), token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://storage.test/signed/assignments/brief.pdf", decodeBody(t, resp)["signedUrl"])
}

func TestDeleteAssignmentCascades(t *testing.T) {
	env := newTestEnv(t)
	instructor, token := env.createUser(t, "asinstructor7", models.RoleInstructor)
	student, studentToken := env.createUser(t, "asstudent7", models.RoleStudent)
	course := env.createCourse(t, instructor, "Cascade", 0)
	env.enroll(t, student, course)
	assignment := createAssignmentFixture(t, env, course, 20)

	req := formRequest(t, "POST", fmt.Sprintf("/api/assignments/%d/submit", assignment.ID), studentToken,
		nil, "file", "answer.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest("DELETE", fmt.Sprintf("/api/assignments/%d", assignment.ID), token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	env.db.Model(&models.AssignmentSubmission{}).Where("assignment_id = ?", assignment.ID).Count(&count)
	assert.Zero(t, count)
}

func TestStudentAssignmentListAnnotations(t *testing.T) {
	env := newTestEnv(t)
	instructor, _ := env.createUser(t, "asinstructor8", models.RoleInstructor)
	student, token := env.createUser(t, "asstudent8", models.RoleStudent)
	course := env.createCourse(t, instructor, "Annotated", 0)
	env.enroll(t, student, course)
	submitted := createAssignmentFixture(t, env, course, 30)
	createAssignmentFixture(t, env, course, 30)

	req := formRequest(t, "POST", fmt.Sprintf("/api/assignments/%d/submit", submitted.ID), token,
		nil, "file", "answer.pdf")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest("GET", fmt.Sprintf("/api/courses/%d/assignments/student", course.ID), token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	list := decodeList(t, resp)
	require.Len(t, list, 2)

	submittedCount := 0
	for _, entry := range list {
		if entry["submitted"].(bool) {
			submittedCount++
		}
	}
	assert.Equal(t, 1, submittedCount)
}
