package course

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress tracks a user's completion of a single lesson. Marking a
// lesson complete is an upsert against the composite unique index, so
// resubmission is a no-op.
type LessonProgress struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID    uint       `json:"lesson_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	IsDeleted   bool       `gorm:"default:false"`
}
