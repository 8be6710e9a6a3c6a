package course

import "gorm.io/gorm"

// Course represents a self-help programme in the catalog
type Course struct {
	gorm.Model
	Title         string `json:"title"`
	Slug          string `json:"slug" gorm:"uniqueIndex;not null"` // also used to build certificate numbers
	Description   string `json:"description"`
	Author        string `json:"author"`
	DurationWeeks int    `json:"duration_weeks" gorm:"default:0"`
	ThumbnailURL  string `json:"thumbnail_url"`
	IsPublished   bool   `json:"is_published" gorm:"default:false"`
	IsDeleted     bool   `gorm:"default:false"`
}

// Module represents a section/module within a course
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in course
	IsDeleted   bool   `gorm:"default:false"`
}

// Lesson represents a single unit of content within a module
type Lesson struct {
	gorm.Model
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Content    string `json:"content" gorm:"type:text"`
	VideoURL   string `json:"video_url"`
	OrderIndex int    `json:"order_index" gorm:"default:0"` // Lesson order within module
	IsDeleted  bool   `gorm:"default:false"`
}
