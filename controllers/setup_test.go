package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/routes"
	"learnhub/storage"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeStore is an in-memory storage.Service used by the handler tests.
type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return f.PublicURL(key), nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://storage.test/" + key
}

func (f *fakeStore) SignedDownloadURL(key string, _ time.Duration) (string, error) {
	return "https://storage.test/signed/" + key, nil
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	cfg   *config.Config
	store *fakeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret", StorageBucket: "test-bucket"}
	store := newFakeStore()
	logger := utils.InitLogger(utils.LoggerConfig{})
	logger.SetOutput(io.Discard)

	app := fiber.New()
	app.Use(middleware.LoggingMiddleware(logger))
	routes.SetupRoutes(app, db, cfg, store, logger)

	return &testEnv{app: app, db: db, cfg: cfg, store: store}
}

func (env *testEnv) createUser(t *testing.T, name string, role models.Role) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, env.db.Create(user).Error)

	token, err := utils.GenerateJWTToken(user, env.cfg)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) createCourse(t *testing.T, instructor *models.User, title string, price float64) *models.Course {
	t.Helper()

	course := &models.Course{
		Title:           title,
		Price:           price,
		DurationWeeks:   4,
		InstructorID:    instructor.ID,
		InstructorName:  instructor.Name,
		InstructorEmail: instructor.Email,
	}
	require.NoError(t, env.db.Create(course).Error)
	return course
}

func (env *testEnv) enroll(t *testing.T, user *models.User, course *models.Course) {
	t.Helper()
	require.NoError(t, env.db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error)
}

func (env *testEnv) addContent(t *testing.T, course *models.Course, fileName string) *models.FileUpload {
	t.Helper()

	upload := &models.FileUpload{
		CourseID:    course.ID,
		FileName:    fileName,
		FileURL:     "https://storage.test/course_files/" + fileName,
		ObjectKey:   "course_files/" + fileName,
		ContentType: models.ContentTypeFile,
		UploadedBy:  course.InstructorID,
		UploadedAt:  time.Now().UTC(),
	}
	require.NoError(t, env.db.Create(upload).Error)
	return upload
}

func jsonRequest(method, target, token string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func formRequest(t *testing.T, method, target, token string, fields map[string]string, fileField, fileName string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("test file contents"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()

	var result []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

var _ storage.Service = (*fakeStore)(nil)
