package courseValidator

import (
	"strconv"
	"strings"

	"psyhelp/middleware"

	"github.com/gofiber/fiber/v2"
)

func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonIDStr := strings.TrimSpace(c.Params("lesson_id"))
		if lessonIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID is required!", nil)
		}

		lessonID, err := strconv.Atoi(lessonIDStr)
		if err != nil || lessonID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

func GenerateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentIDStr := strings.TrimSpace(c.Params("id"))
		if enrollmentIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment ID is required!", nil)
		}

		enrollmentID, err := strconv.Atoi(enrollmentIDStr)
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		return c.Next()
	}
}
