package courseValidator

import (
	"regexp"
	"strings"

	"psyhelp/middleware"

	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title         string `json:"title"`
			Slug          string `json:"slug"`
			Description   string `json:"description"`
			Author        string `json:"author"`
			DurationWeeks int    `json:"duration_weeks"`
			ThumbnailURL  string `json:"thumbnail_url"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Slug (certificate numbers embed it, so keep it strict)
		if strings.TrimSpace(reqData.Slug) == "" {
			errors["slug"] = "Slug is required!"
		} else if !slugPattern.MatchString(reqData.Slug) {
			errors["slug"] = "Slug must contain only lowercase letters, digits and hyphens!"
		}

		// Validate Duration
		if reqData.DurationWeeks < 1 {
			errors["duration_weeks"] = "Duration must be at least 1 week!"
		}

		// Respond with validation errors if any exist
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title         string `json:"title"`
			Description   string `json:"description"`
			Author        string `json:"author"`
			DurationWeeks int    `json:"duration_weeks"`
			ThumbnailURL  string `json:"thumbnail_url"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != "" && len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if reqData.DurationWeeks < 0 {
			errors["duration_weeks"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		// Validate Page
		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		// Validate Limit
		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

func GetCourseBySlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		if slug == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course slug is required!", nil)
		}

		if !slugPattern.MatchString(slug) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course slug!", nil)
		}

		c.Locals("courseSlug", slug)
		return c.Next()
	}
}
