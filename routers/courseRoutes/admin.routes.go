package courseRoutes

import (
	controllers "psyhelp/controllers/course"
	"psyhelp/middleware"
	validators "psyhelp/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the catalog management routes (admin only)
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	// Course management
	adminGroup.Post("/course", middleware.JWTMiddleware, validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Put("/course/:id", middleware.JWTMiddleware, validators.CourseIDParam(), validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Put("/course/:id/publish", middleware.JWTMiddleware, validators.CourseIDParam(), controllers.AdminPublishCourse)

	// Module and lesson management
	adminGroup.Post("/course/:id/module", middleware.JWTMiddleware, validators.CourseIDParam(), validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Post("/module/:id/lesson", middleware.JWTMiddleware, validators.ModuleIDParam(), validators.CreateLesson(), controllers.AdminCreateLesson)
}
