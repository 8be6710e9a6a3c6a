package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPublishedCourses(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	seedCourse(t, "ptsd-recovery", true, 2)

	status, payload := doRequest(t, app, "GET", "/course/list?page=1&limit=10", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := responseData(t, payload)
	courses := data["courses"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, "ptsd-recovery", courses[0].(map[string]interface{})["slug"])
}

func TestGetCourseBySlugWhenNotEnrolled(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	seedCourse(t, "ptsd-recovery", true, 2)

	status, payload := doRequest(t, app, "GET", "/course/ptsd-recovery", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := responseData(t, payload)
	assert.Equal(t, false, data["is_enrolled"])
	assert.Empty(t, data["modules"])

	course := data["course"].(map[string]interface{})
	assert.Equal(t, "Жизнь после травмы", course["title"])
}

func TestGetCourseBySlugWhenEnrolled(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	course, lessons := seedCourse(t, "ptsd-recovery", true, 2, 1)

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", course.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = completeLesson(t, app, token, lessons[0].ID)
	require.Equal(t, fiber.StatusOK, status)

	status, payload := doRequest(t, app, "GET", "/course/ptsd-recovery", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := responseData(t, payload)
	assert.Equal(t, true, data["is_enrolled"])

	modules := data["modules"].([]interface{})
	require.Len(t, modules, 2)

	first := modules[0].(map[string]interface{})["lessons"].([]interface{})
	require.Len(t, first, 2)
	assert.Equal(t, true, first[0].(map[string]interface{})["is_completed"])
	assert.Equal(t, false, first[1].(map[string]interface{})["is_completed"])

	second := modules[1].(map[string]interface{})["lessons"].([]interface{})
	require.Len(t, second, 1)
	assert.Equal(t, false, second[0].(map[string]interface{})["is_completed"])
}

func TestGetUnknownCourseBySlug(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)

	status, _ := doRequest(t, app, "GET", "/course/nope", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
