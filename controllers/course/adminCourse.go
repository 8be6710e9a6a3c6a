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

// adminGuard checks that the caller is an existing ADMIN account. It writes
// the error response itself and reports whether the handler may proceed.
func adminGuard(c *fiber.Ctx) (bool, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return false, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}
	return true, nil
}

// AdminCreateCourse creates a new course in DRAFT state
func AdminCreateCourse(c *fiber.Ctx) error {
	if ok, err := adminGuard(c); !ok {
		return err
	}

	// Get validated request data
	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title         string `json:"title"`
		Slug          string `json:"slug"`
		Description   string `json:"description"`
		Author        string `json:"author"`
		DurationWeeks int    `json:"duration_weeks"`
		ThumbnailURL  string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:         reqData.Title,
		Slug:          reqData.Slug,
		Description:   reqData.Description,
		Author:        reqData.Author,
		DurationWeeks: reqData.DurationWeeks,
		ThumbnailURL:  reqData.ThumbnailURL,
		IsPublished:   false,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course with this slug already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates an existing course. Only the enumerated fields
// below are updatable; the slug is immutable once set because issued
// certificate numbers embed it.
func AdminUpdateCourse(c *fiber.Ctx) error {
	if ok, err := adminGuard(c); !ok {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Author        string `json:"author"`
		DurationWeeks int    `json:"duration_weeks"`
		ThumbnailURL  string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Author != "" {
		course.Author = reqData.Author
	}
	if reqData.DurationWeeks > 0 {
		course.DurationWeeks = reqData.DurationWeeks
	}
	if reqData.ThumbnailURL != "" {
		course.ThumbnailURL = reqData.ThumbnailURL
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminPublishCourse makes a course available for enrollment
func AdminPublishCourse(c *fiber.Ctx) error {
	if ok, err := adminGuard(c); !ok {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if err := database.Database.Db.Model(&course).Update("is_published", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// AdminCreateModule adds a module to a course
func AdminCreateModule(c *fiber.Ctx) error {
	if ok, err := adminGuard(c); !ok {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module := courseModels.Module{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminCreateLesson adds a lesson to a module
func AdminCreateLesson(c *fiber.Ctx) error {
	if ok, err := adminGuard(c); !ok {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title      string `json:"title"`
		Summary    string `json:"summary"`
		Content    string `json:"content"`
		VideoURL   string `json:"video_url"`
		OrderIndex int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson := courseModels.Lesson{
		ModuleID:   uint(moduleID),
		Title:      reqData.Title,
		Summary:    reqData.Summary,
		Content:    reqData.Content,
		VideoURL:   reqData.VideoURL,
		OrderIndex: reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}
