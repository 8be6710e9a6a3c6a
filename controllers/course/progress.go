package controllers

import (
	"errors"
	"log"
	"math"
	"time"

	"psyhelp/database"
	"psyhelp/middleware"
	"psyhelp/models"
	courseModels "psyhelp/models/course"
	"psyhelp/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CompleteLesson marks a lesson as completed for the caller and recomputes
// the enrollment's aggregate progress. The first transition to 100% issues
// the completion certificate.
func CompleteLesson(c *fiber.Ctx) error {
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

	// Retrieve validated lesson ID
	lessonID := c.Locals("lessonID").(int)

	// Check if lesson exists and resolve its course
	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lesson.ModuleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	courseID := module.CourseID

	// Check if user is enrolled in the course
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not enrolled in this course!", nil)
	}

	// Upsert the lesson progress record. Re-marking a completed lesson is a
	// no-op that still re-triggers the recomputation below.
	now := time.Now()
	var progress courseModels.LessonProgress
	if err := database.Database.Db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error; err != nil {
		progress = courseModels.LessonProgress{
			UserID:      userID,
			LessonID:    uint(lessonID),
			Completed:   true,
			CompletedAt: &now,
		}
		if err := database.Database.Db.Create(&progress).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
			}
			// A concurrent request won the insert; continue with its row.
			database.Database.Db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress)
		}
	} else if !progress.Completed {
		if err := database.Database.Db.Model(&progress).
			Updates(map[string]interface{}{"completed": true, "completed_at": now}).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
		}
	}

	percent, _ := recomputeEnrollmentProgress(userID, courseID, &enrollment)

	// Any completion event at 100% with no stored certificate issues one, so
	// an earlier absorbed rendering failure is retried on the next lesson
	// completion. The conditional ref write keeps issuance exactly-once.
	certificateIssued := false
	if percent == 100 && enrollment.CertificateRef == "" {
		completedAt := now
		if enrollment.CompletedAt != nil {
			completedAt = *enrollment.CompletedAt
		}
		var course courseModels.Course
		if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err == nil {
			certificateIssued = issueCertificate(&user, &course, &enrollment, completedAt)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed!", fiber.Map{
		"progress":           percent,
		"course_completed":   percent == 100 || enrollment.Completed,
		"certificate_issued": certificateIssued,
	})
}

// recomputeEnrollmentProgress derives the enrollment percentage from fresh
// lesson counts and persists it. The previously stored percentage is never an
// input, so catalog changes are picked up on the next completion event.
// Returns the new percentage and whether this call made the false->true
// completion transition.
func recomputeEnrollmentProgress(userID, courseID uint, enrollment *courseModels.Enrollment) (int, bool) {
	db := database.Database.Db

	var totalLessons int64
	db.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ? AND modules.is_deleted = ? AND lessons.is_deleted = ?", courseID, false, false).
		Count(&totalLessons)

	// Same soft-delete filters as the total above: a lesson removed after
	// being completed must drop out of both counts.
	var doneLessons int64
	db.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.completed = ? AND modules.course_id = ? AND modules.is_deleted = ? AND lessons.is_deleted = ?", userID, true, courseID, false, false).
		Count(&doneLessons)

	// Round half up. A course with no lessons stays at 0 and can never be
	// completed through this path.
	percent := 0
	if totalLessons > 0 {
		percent = int(math.Round(float64(doneLessons) / float64(totalLessons) * 100))
	}

	newlyCompleted := false
	if percent == 100 {
		// Conditional update so completed_at is written exactly once even
		// when two final-lesson completions race.
		res := db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND completed = ?", enrollment.ID, false).
			Updates(map[string]interface{}{"progress": percent, "completed": true, "completed_at": time.Now()})
		newlyCompleted = res.RowsAffected > 0
		if !newlyCompleted {
			db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).Update("progress", percent)
		}
	} else {
		// Progress may drop below 100 when lessons were added later; the
		// completed flag and completed_at are left untouched.
		db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).Update("progress", percent)
	}

	enrollment.Progress = percent
	return percent, newlyCompleted
}

// issueCertificate renders the completion document and stores its reference
// on the enrollment. The conditional write keeps issuance exactly-once: a
// concurrent winner's reference is never overwritten. Returns whether this
// call durably stored a new reference.
func issueCertificate(user *models.User, course *courseModels.Course, enrollment *courseModels.Enrollment, completedAt time.Time) bool {
	// Render first, without holding anything on the enrollment row.
	ref, err := renderCertificate(user, course, completedAt)
	if err != nil {
		log.Printf("[COURSE] Certificate rendering failed for enrollment %d: %v", enrollment.ID, err)
		return false
	}

	res := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("id = ? AND (certificate_ref IS NULL OR certificate_ref = '')", enrollment.ID).
		Update("certificate_ref", ref)
	if res.Error != nil {
		log.Printf("[COURSE] Failed to store certificate for enrollment %d: %v", enrollment.ID, res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		// Another request already issued the certificate; discard this one.
		return false
	}

	enrollment.CertificateRef = ref
	go utils.SendCourseCompletedEmail(user.Email, user.DisplayName(), course.Title)
	return true
}
