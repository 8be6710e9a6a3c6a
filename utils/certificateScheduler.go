package utils

import (
	"log"
	"time"

	"psyhelp/certificate"
	"psyhelp/config"
	"psyhelp/database"
	"psyhelp/models"
	courseModels "psyhelp/models/course"

	"github.com/robfig/cron/v3"
)

// InitializeCertificateScheduler sets up the issuance retry scheduler.
// Rendering failures during lesson completion leave the enrollment completed
// with an empty certificate reference; this sweep picks those up.
func InitializeCertificateScheduler() {
	log.Println("[CERTIFICATE-SCHEDULER] Initializing certificate scheduler...")

	c := cron.New()

	c.AddFunc("@hourly", func() {
		log.Println("[CERTIFICATE-SCHEDULER] Running pending certificate sweep...")
		RetryPendingCertificates()
	})

	c.Start()
	log.Println("[CERTIFICATE-SCHEDULER] Certificate scheduler started - runs hourly")
}

// RetryPendingCertificates issues certificates for completed enrollments that
// are still missing one
func RetryPendingCertificates() {
	db := database.Database.Db

	var pending []courseModels.Enrollment
	if err := db.
		Where("completed = ? AND (certificate_ref IS NULL OR certificate_ref = '') AND is_deleted = ?", true, false).
		Find(&pending).Error; err != nil {
		log.Printf("[CERTIFICATE-SCHEDULER] Error fetching pending enrollments: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}
	log.Printf("[CERTIFICATE-SCHEDULER] Found %d enrollments without a certificate", len(pending))

	for _, enrollment := range pending {
		var user models.User
		if err := db.Where("id = ?", enrollment.UserID).First(&user).Error; err != nil {
			log.Printf("[CERTIFICATE-SCHEDULER] Error fetching user %d: %v", enrollment.UserID, err)
			continue
		}

		var course courseModels.Course
		if err := db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
			log.Printf("[CERTIFICATE-SCHEDULER] Error fetching course %d: %v", enrollment.CourseID, err)
			continue
		}

		completedAt := time.Now()
		if enrollment.CompletedAt != nil {
			completedAt = *enrollment.CompletedAt
		}

		data := certificate.Data{
			StudentName: user.DisplayName(),
			CourseTitle: course.Title,
			Duration:    certificate.FormatWeeks(course.DurationWeeks),
			Date:        certificate.FormatCompletionDate(completedAt),
			Number:      certificate.NewNumber(course.Slug, time.Now()),
		}

		png, err := certificate.Render(data, config.AppConfig.CertFontPath)
		if err != nil {
			log.Printf("[CERTIFICATE-SCHEDULER] Rendering failed for enrollment %d: %v", enrollment.ID, err)
			continue
		}

		// Conditional write: a certificate issued between the sweep query and
		// now must not be overwritten.
		res := db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND (certificate_ref IS NULL OR certificate_ref = '')", enrollment.ID).
			Update("certificate_ref", certificate.EncodeDataURI(png))
		if res.Error != nil {
			log.Printf("[CERTIFICATE-SCHEDULER] Error storing certificate for enrollment %d: %v", enrollment.ID, res.Error)
			continue
		}

		if res.RowsAffected > 0 {
			log.Printf("[CERTIFICATE-SCHEDULER] Issued certificate for enrollment %d", enrollment.ID)
			SendCourseCompletedEmail(user.Email, user.DisplayName(), course.Title)
		}
	}
}
