package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment binds a user to a course and carries the derived progress state.
// The composite unique index is the single arbiter for duplicate enrollments.
type Enrollment struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID       uint       `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	Progress       int        `json:"progress" gorm:"default:0"` // Completion percentage (0-100)
	Completed      bool       `json:"completed" gorm:"default:false"`
	CompletedAt    *time.Time `json:"completed_at"` // set once, on the first 100% transition
	CertificateRef string     `json:"certificate_ref" gorm:"type:text"`
	IsDeleted      bool       `gorm:"default:false"`
}
