package routes

import (
	"log"

	"learnhub/config"
	"learnhub/controllers"
	"learnhub/middleware"
	"learnhub/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, store storage.Service, logger *log.Logger) {
	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	instructorMiddleware := middleware.InstructorMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, store, logger)
	app.Post("/api/auth/signup", authController.Signup)
	app.Post("/api/auth/signin", authController.Signin)
	app.Get("/api/auth/profile", authMiddleware, authController.GetProfile)
	app.Put("/api/auth/profile", authMiddleware, authController.UpdateProfile)
	app.Put("/api/auth/profile/picture", authMiddleware, authController.UpdateProfilePicture)
	app.Get("/api/auth/users/:id", authMiddleware, authController.GetUser)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, store, logger)
	app.Post("/api/create-course", authMiddleware, instructorMiddleware, coursesController.CreateCourse)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/enrolled", authMiddleware, coursesController.EnrolledCourses)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Put("/:id", authMiddleware, instructorMiddleware, coursesController.UpdateCourse)
	courses.Delete("/:id", authMiddleware, instructorMiddleware, coursesController.DeleteCourse)
	courses.Post("/:courseId/enroll", authMiddleware, coursesController.Enroll)

	// Content routes
	contentController := controllers.NewContentController(db, cfg, store, logger)
	app.Post("/api/upload/:courseId", authMiddleware, instructorMiddleware, contentController.UploadFile)
	courses.Get("/:courseId/content", authMiddleware, contentController.ListContent)
	courses.Delete("/:courseId/content/:contentId", authMiddleware, instructorMiddleware, contentController.DeleteContent)
	courses.Get("/:courseId/files/:fileId/download", authMiddleware, contentController.DownloadFile)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(db, cfg, logger)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Post("/course/:courseId", instructorMiddleware, quizzesController.CreateQuiz)
	quizzes.Get("/course/:courseId", quizzesController.ListQuizzes)
	quizzes.Get("/:quizId", quizzesController.GetQuiz)
	quizzes.Put("/:quizId", instructorMiddleware, quizzesController.UpdateQuiz)
	quizzes.Delete("/:quizId", instructorMiddleware, quizzesController.DeleteQuiz)

	// Quiz submission routes
	submissionsController := controllers.NewSubmissionsController(db, cfg, logger)
	submissions := app.Group("/api/submissions", authMiddleware)
	submissions.Get("/:quizId", submissionsController.GetSubmission)
	submissions.Post("/:quizId", submissionsController.CreateSubmission)
	submissions.Delete("/:quizId", submissionsController.DeleteSubmission)

	// Assignment routes
	assignmentsController := controllers.NewAssignmentsController(db, cfg, store, logger)
	courses.Get("/:courseId/assignments", authMiddleware, assignmentsController.ListAssignments)
	courses.Get("/:courseId/assignments/student", authMiddleware, assignmentsController.ListAssignmentsForStudent)
	courses.Post("/:courseId/assignments", authMiddleware, instructorMiddleware, assignmentsController.CreateAssignment)
	assignments := app.Group("/api/assignments", authMiddleware)
	assignments.Get("/:assignmentId", assignmentsController.GetAssignment)
	assignments.Put("/:assignmentId", instructorMiddleware, assignmentsController.UpdateAssignment)
	assignments.Delete("/:assignmentId", instructorMiddleware, assignmentsController.DeleteAssignment)
	assignments.Get("/:assignmentId/download", assignmentsController.DownloadAssignmentFile)
	assignments.Post("/:assignmentId/submit", assignmentsController.SubmitAssignment)
	assignments.Get("/:assignmentId/submissions", instructorMiddleware, assignmentsController.ListSubmissions)
	assignments.Put("/:assignmentId/submissions/:submissionId/grade", instructorMiddleware, assignmentsController.GradeSubmission)
	assignments.Get("/:assignmentId/submissions/:submissionId/download", assignmentsController.DownloadSubmissionFile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, logger)
	app.Get("/api/course-progress/:courseId/feedback", progressController.GetCourseFeedback)
	courseProgress := app.Group("/api/course-progress", authMiddleware)
	courseProgress.Get("/:courseId", progressController.GetProgress)
	courseProgress.Put("/:courseId", progressController.UpsertProgress)
	courseProgress.Post("/:courseId/content/:contentId/toggle", progressController.ToggleContentComplete)

	fileProgress := app.Group("/api/file-progress", authMiddleware)
	fileProgress.Get("/:courseId", progressController.ListFileProgress)
	fileProgress.Post("/:courseId/files/:fileId/toggle", progressController.ToggleFileProgress)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(db, cfg, logger)
	app.Get("/api/analytics/instructor", authMiddleware, instructorMiddleware, analyticsController.InstructorAnalytics)
}
