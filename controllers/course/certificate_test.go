package controllers_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"psyhelp/database"
	courseModels "psyhelp/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeCourse enrolls the token's user and completes every lesson,
// returning the enrollment
func completeCourse(t *testing.T, app *fiber.App, token string, course courseModels.Course, lessons []courseModels.Lesson) courseModels.Enrollment {
	t.Helper()

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", course.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	for _, lesson := range lessons {
		status, _ = completeLesson(t, app, token, lesson.ID)
		require.Equal(t, fiber.StatusOK, status)
	}

	var enrollment courseModels.Enrollment
	require.NoError(t, database.Database.Db.Where("course_id = ?", course.ID).First(&enrollment).Error)
	require.True(t, enrollment.Completed)
	return enrollment
}

func TestGenerateCertificateReturnsExisting(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	course, lessons := seedCourse(t, "ptsd-recovery", true, 2)

	enrollment := completeCourse(t, app, token, course, lessons)
	require.NotEmpty(t, enrollment.CertificateRef)

	// Without force the stored reference comes back unchanged
	status, payload := doRequest(t, app, "POST", fmt.Sprintf("/user/enrollment/%d/certificate", enrollment.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, enrollment.CertificateRef, responseData(t, payload)["certificate_ref"])
}

func TestGenerateCertificateForce(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	course, lessons := seedCourse(t, "ptsd-recovery", true, 2)

	enrollment := completeCourse(t, app, token, course, lessons)
	require.NotEmpty(t, enrollment.CertificateRef)

	// Force regeneration stamps a fresh certificate number
	time.Sleep(5 * time.Millisecond)
	status, payload := doRequest(t, app, "POST", fmt.Sprintf("/user/enrollment/%d/certificate?force=true", enrollment.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	ref := responseData(t, payload)["certificate_ref"].(string)
	assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))
	assert.NotEqual(t, enrollment.CertificateRef, ref)

	var updated courseModels.Enrollment
	require.NoError(t, database.Database.Db.Where("id = ?", enrollment.ID).First(&updated).Error)
	assert.Equal(t, ref, updated.CertificateRef)
}

func TestGenerateCertificateForIncompleteCourse(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	course, lessons := seedCourse(t, "ptsd-recovery", true, 2)

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", course.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = completeLesson(t, app, token, lessons[0].ID)
	require.Equal(t, fiber.StatusOK, status)

	var enrollment courseModels.Enrollment
	require.NoError(t, database.Database.Db.Where("course_id = ?", course.ID).First(&enrollment).Error)

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/user/enrollment/%d/certificate", enrollment.ID), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGenerateCertificateForOtherUsersEnrollment(t *testing.T) {
	app := setupApp(t)
	owner := createUser(t, "Анна", "anna@example.com", "USER")
	ownerToken := authToken(t, owner)
	course, lessons := seedCourse(t, "ptsd-recovery", true, 2)
	enrollment := completeCourse(t, app, ownerToken, course, lessons)

	intruder := createUser(t, "Борис", "boris@example.com", "USER")
	intruderToken := authToken(t, intruder)

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/user/enrollment/%d/certificate", enrollment.ID), intruderToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetUserCertificates(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "Анна", "anna@example.com", "USER")
	token := authToken(t, user)
	course, lessons := seedCourse(t, "ptsd-recovery", true, 2)
	completeCourse(t, app, token, course, lessons)

	status, payload := doRequest(t, app, "GET", "/user/certificates", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := responseData(t, payload)
	assert.Equal(t, float64(1), data["total"])

	certificates := data["certificates"].([]interface{})
	require.Len(t, certificates, 1)

	row := certificates[0].(map[string]interface{})
	assert.Equal(t, "Жизнь после травмы", row["course_title"])
	assert.Equal(t, float64(6), row["duration_weeks"])
	assert.NotEmpty(t, row["completion_date"])
	assert.True(t, strings.HasPrefix(row["certificate_ref"].(string), "data:image/png;base64,"))
}
