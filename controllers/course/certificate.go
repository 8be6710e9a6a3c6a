package controllers

import (
	"strings"
	"time"

	"psyhelp/certificate"
	"psyhelp/config"
	"psyhelp/database"
	"psyhelp/middleware"
	"psyhelp/models"
	courseModels "psyhelp/models/course"

	"github.com/gofiber/fiber/v2"
)

// renderCertificate produces the data-URI reference for a completion
// certificate. The completion date comes from the given timestamp; the
// certificate number is always freshly stamped.
func renderCertificate(user *models.User, course *courseModels.Course, completedAt time.Time) (string, error) {
	data := certificate.Data{
		StudentName: user.DisplayName(),
		CourseTitle: course.Title,
		Duration:    certificate.FormatWeeks(course.DurationWeeks),
		Date:        certificate.FormatCompletionDate(completedAt),
		Number:      certificate.NewNumber(course.Slug, time.Now()),
	}

	png, err := certificate.Render(data, config.AppConfig.CertFontPath)
	if err != nil {
		return "", err
	}
	return certificate.EncodeDataURI(png), nil
}

// GenerateCertificate returns the caller's certificate for a completed
// enrollment, rendering one if it does not exist yet. With force=true a new
// certificate replaces the stored one.
func GenerateCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	force := strings.EqualFold(c.Query("force"), "true")

	// The enrollment must belong to the caller; anything else is a 404, the
	// existence of other users' enrollments is not disclosed.
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND user_id = ? AND is_deleted = ?", enrollmentID, userID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if !enrollment.Completed {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not completed yet!", nil)
	}

	// Idempotent read: an existing certificate is returned as is unless the
	// owner explicitly asks for regeneration.
	if enrollment.CertificateRef != "" && !force {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", fiber.Map{
			"certificate_ref": enrollment.CertificateRef,
		})
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	completedAt := time.Now()
	if enrollment.CompletedAt != nil {
		completedAt = *enrollment.CompletedAt
	}

	ref, err := renderCertificate(&user, &course, completedAt)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate!", nil)
	}

	if force {
		if err := database.Database.Db.Model(&courseModels.Enrollment{}).
			Where("id = ?", enrollment.ID).Update("certificate_ref", ref).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store certificate!", nil)
		}
	} else {
		res := database.Database.Db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND (certificate_ref IS NULL OR certificate_ref = '')", enrollment.ID).
			Update("certificate_ref", ref)
		if res.Error != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store certificate!", nil)
		}
		if res.RowsAffected == 0 {
			// A concurrent issuance won; return its reference instead.
			if err := database.Database.Db.Where("id = ?", enrollment.ID).First(&enrollment).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store certificate!", nil)
			}
			ref = enrollment.CertificateRef
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate generated successfully!", fiber.Map{
		"certificate_ref": ref,
	})
}

// CertificateWithCourse is a row of the user's certificates listing
type CertificateWithCourse struct {
	CourseTitle    string     `json:"course_title"`
	CompletionDate *time.Time `json:"completion_date"`
	CertificateRef string     `json:"certificate_ref"`
	DurationWeeks  int        `json:"duration_weeks"`
}

// GetUserCertificates gets all issued certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.
		Where("user_id = ? AND completed = ? AND certificate_ref <> '' AND is_deleted = ?", userID, true, false).
		Order("completed_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)
		result[i] = CertificateWithCourse{
			CourseTitle:    course.Title,
			CompletionDate: e.CompletedAt,
			CertificateRef: e.CertificateRef,
			DurationWeeks:  course.DurationWeeks,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"total":        len(result),
	})
}
