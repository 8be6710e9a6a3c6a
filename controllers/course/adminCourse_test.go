package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCreateCourseRequiresAdmin(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)

	status, _ := doRequest(t, app, "POST", "/admin/course", token, fiber.Map{
		"title":          "Работа с тревогой",
		"slug":           "anxiety-basics",
		"duration_weeks": 4,
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAdminCatalogFlow(t *testing.T) {
	app := setupApp(t)
	admin := createUser(t, "Ольга", "olga@example.com", "ADMIN")
	adminToken := authToken(t, admin)

	// Create course
	status, payload := doRequest(t, app, "POST", "/admin/course", adminToken, fiber.Map{
		"title":          "Работа с тревогой",
		"slug":           "anxiety-basics",
		"duration_weeks": 4,
	})
	require.Equal(t, fiber.StatusCreated, status)
	data := responseData(t, payload)
	courseID := int(data["ID"].(float64))
	assert.Equal(t, false, data["is_published"])

	// Add a module and a lesson
	status, payload = doRequest(t, app, "POST", fmt.Sprintf("/admin/course/%d/module", courseID), adminToken, fiber.Map{
		"title": "Первый модуль",
	})
	require.Equal(t, fiber.StatusCreated, status)
	moduleID := int(responseData(t, payload)["ID"].(float64))

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/admin/module/%d/lesson", moduleID), adminToken, fiber.Map{
		"title": "Первый урок",
	})
	require.Equal(t, fiber.StatusCreated, status)

	// Enrollment is rejected until the course is published
	user := createUser(t, "Анна", "anna@example.com", "USER")
	userToken := authToken(t, user)
	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", courseID), userToken, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, _ = doRequest(t, app, "PUT", fmt.Sprintf("/admin/course/%d/publish", courseID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", courseID), userToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminCreateCourseDuplicateSlug(t *testing.T) {
	app := setupApp(t)
	admin := createUser(t, "Ольга", "olga@example.com", "ADMIN")
	token := authToken(t, admin)

	body := fiber.Map{"title": "Работа с тревогой", "slug": "anxiety-basics", "duration_weeks": 4}

	status, _ := doRequest(t, app, "POST", "/admin/course", token, body)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doRequest(t, app, "POST", "/admin/course", token, body)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestAdminUpdateCourseFields(t *testing.T) {
	app := setupApp(t)
	admin := createUser(t, "Ольга", "olga@example.com", "ADMIN")
	token := authToken(t, admin)

	status, payload := doRequest(t, app, "POST", "/admin/course", token, fiber.Map{
		"title":          "Работа с тревогой",
		"slug":           "anxiety-basics",
		"duration_weeks": 4,
	})
	require.Equal(t, fiber.StatusCreated, status)
	courseID := int(responseData(t, payload)["ID"].(float64))

	status, payload = doRequest(t, app, "PUT", fmt.Sprintf("/admin/course/%d", courseID), token, fiber.Map{
		"duration_weeks": 8,
	})
	require.Equal(t, fiber.StatusOK, status)

	data := responseData(t, payload)
	assert.Equal(t, float64(8), data["duration_weeks"])
	// Untouched fields keep their values
	assert.Equal(t, "Работа с тревогой", data["title"])
	assert.Equal(t, "anxiety-basics", data["slug"])
}
