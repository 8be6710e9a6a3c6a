package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"psyhelp/config"
	"psyhelp/database"
	"psyhelp/middleware"
	"psyhelp/models"
	courseModels "psyhelp/models/course"
	courseRoutes "psyhelp/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires a fiber app against a fresh in-memory database
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	config.LoadConfig()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Lesson{},
		&courseModels.Enrollment{},
		&courseModels.LessonProgress{},
	))

	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	return app
}

func createUser(t *testing.T, name, email, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Role: role, Password: "secret"}
	require.NoError(t, database.Database.Db.Create(&user).Error)
	return user
}

func authToken(t *testing.T, user models.User) string {
	t.Helper()

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return token
}

// seedCourse creates a course with one module per entry in lessonCounts,
// holding that many lessons. Returns the course and all lessons in order.
func seedCourse(t *testing.T, slug string, published bool, lessonCounts ...int) (courseModels.Course, []courseModels.Lesson) {
	t.Helper()
	db := database.Database.Db

	course := courseModels.Course{
		Title:         "Жизнь после травмы",
		Slug:          slug,
		DurationWeeks: 6,
		IsPublished:   published,
	}
	require.NoError(t, db.Create(&course).Error)

	var lessons []courseModels.Lesson
	for mi, count := range lessonCounts {
		module := courseModels.Module{CourseID: course.ID, Title: "Модуль", OrderIndex: mi}
		require.NoError(t, db.Create(&module).Error)

		for li := 0; li < count; li++ {
			lesson := courseModels.Lesson{ModuleID: module.ID, Title: "Урок", OrderIndex: li}
			require.NoError(t, db.Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
	}
	return course, lessons
}

// doRequest performs a JSON request and decodes the response envelope
func doRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	payload := make(map[string]interface{})
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp.StatusCode, payload
}

// responseData unwraps the "data" object of the response envelope
func responseData(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()

	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", payload)
	return data
}
