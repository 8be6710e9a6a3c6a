package controllers

import (
	"errors"

	"psyhelp/database"
	"psyhelp/middleware"
	"psyhelp/models"
	courseModels "psyhelp/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func EnrollInCourse(c *fiber.Ctx) error {
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

	// Retrieve validated course ID
	courseID := c.Locals("courseID").(int)

	// Check if course exists
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Course is not available yet!", nil)
	}

	// Create enrollment. No existence pre-check: the unique index on
	// (user_id, course_id) decides the winner between concurrent enrolls.
	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: uint(courseID),
		Progress: 0,
	}

	if err := database.Database.Db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// EnrollmentWithCourse enriches an enrollment with course fields needed by
// the progress screen
type EnrollmentWithCourse struct {
	courseModels.Enrollment
	CourseTitle   string `json:"course_title"`
	CourseSlug    string `json:"course_slug"`
	DurationWeeks int    `json:"duration_weeks"`
	ModuleCount   int64  `json:"module_count"`
}

func GetUserEnrollments(c *fiber.Ctx) error {
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
	reqData, hasPagination := c.Locals("validatedEnrollmentList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND is_deleted = ?", userID, false)

	// Get total count
	var total int64
	db.Count(&total)

	page := 1
	limit := int(total)
	if hasPagination {
		page = *reqData.Page
		limit = *reqData.Limit
		db = db.Offset((page - 1) * limit).Limit(limit)
	}

	var enrollments []courseModels.Enrollment
	if err := db.Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithCourse, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)

		var moduleCount int64
		database.Database.Db.Model(&courseModels.Module{}).
			Where("course_id = ? AND is_deleted = ?", e.CourseID, false).Count(&moduleCount)

		result[i] = EnrollmentWithCourse{
			Enrollment:    e,
			CourseTitle:   course.Title,
			CourseSlug:    course.Slug,
			DurationWeeks: course.DurationWeeks,
			ModuleCount:   moduleCount,
		}
	}

	// Prepare response
	response := map[string]interface{}{
		"enrollments": result,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}
