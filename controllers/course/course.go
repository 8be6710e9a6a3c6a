package controllers

import (
	"psyhelp/database"
	"psyhelp/middleware"
	"psyhelp/models"
	courseModels "psyhelp/models/course"

	"github.com/gofiber/fiber/v2"
)

func GetPublishedCourses(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated pagination request
	reqData := c.Locals("validatedCourseList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_published = ? AND is_deleted = ?", true, false)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// LessonWithCompletion is a lesson enriched with the caller's completion flag
type LessonWithCompletion struct {
	courseModels.Lesson
	IsCompleted bool `json:"is_completed"`
}

// ModuleWithLessons is a module with its ordered lessons
type ModuleWithLessons struct {
	courseModels.Module
	Lessons []LessonWithCompletion `json:"lessons"`
}

// GetCourseBySlug returns the learner's view of a course: modules with
// per-lesson completion flags when enrolled, a bare course shell otherwise.
func GetCourseBySlug(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	var course courseModels.Course
	if err := database.Database.Db.Where("slug = ? AND is_deleted = ? AND is_published = ?", slug, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Check if user is enrolled
	var enrollment courseModels.Enrollment
	isEnrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, course.ID, false).First(&enrollment).Error == nil

	if !isEnrolled {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
			"course":      course,
			"modules":     []ModuleWithLessons{},
			"is_enrolled": false,
		})
	}

	// Get modules with their lessons
	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).Order("order_index asc").Find(&modules)

	// Completed lesson IDs for the caller, one query for the whole course
	var progressRows []courseModels.LessonProgress
	database.Database.Db.Where("user_id = ? AND completed = ? AND is_deleted = ?", userID, true, false).Find(&progressRows)

	completedIDs := make(map[uint]bool, len(progressRows))
	for _, p := range progressRows {
		completedIDs[p.LessonID] = true
	}

	result := make([]ModuleWithLessons, len(modules))
	for i, mod := range modules {
		var lessons []courseModels.Lesson
		database.Database.Db.Where("module_id = ? AND is_deleted = ?", mod.ID, false).Order("order_index asc").Find(&lessons)

		withCompletion := make([]LessonWithCompletion, len(lessons))
		for j, lesson := range lessons {
			withCompletion[j] = LessonWithCompletion{
				Lesson:      lesson,
				IsCompleted: completedIDs[lesson.ID],
			}
		}
		result[i] = ModuleWithLessons{Module: mod, Lessons: withCompletion}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":      course,
		"modules":     result,
		"is_enrolled": true,
		"enrollment":  enrollment,
	})
}
