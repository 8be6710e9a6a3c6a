package courseRoutes

import (
	controllers "psyhelp/controllers/course"
	"psyhelp/middleware"
	validators "psyhelp/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetPublishedCourses)
	courseGroup.Get("/:slug", middleware.JWTMiddleware, validators.GetCourseBySlug(), controllers.GetCourseBySlug)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Lesson completion (drives progress recomputation and certification)
	courseGroup.Post("/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.CompleteLesson(), controllers.CompleteLesson)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, validators.EnrollmentList(), controllers.GetUserEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
	userGroup.Post("/enrollment/:id/certificate", middleware.JWTMiddleware, validators.GenerateCertificate(), controllers.GenerateCertificate)
}
