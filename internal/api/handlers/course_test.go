package handlers_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) login(t *testing.T, email, password string) {
	t.Helper()
	resp := ts.postJSON(t, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func courseBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Intro to Go",
		"description": "Learn Go from scratch",
		"price":       49.99,
		"tags":        "go,backend",
		"level":       "beginner",
		"demoUrl":     "https://media.test/demo.mp4",
		"courseData": []map[string]interface{}{
			{
				"title":        "Getting started",
				"videoUrl":     "https://media.test/secret.mp4",
				"videoSection": "Basics",
				"videoLength":  12,
			},
		},
	}
}

func TestCourseCreate_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	testutil.NewUserBuilder().WithEmail("user@x.com").WithPassword("secret1").Build(t, ts.env.Users)
	testutil.NewUserBuilder().WithEmail("admin@x.com").WithPassword("secret1").WithRole(domain.RoleAdmin).Build(t, ts.env.Users)

	// Plain user is forbidden
	ts.login(t, "user@x.com", "secret1")
	resp := ts.postJSON(t, "/api/v1/courses", courseBody())
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "not allowed")

	// Admin creates the course, thumbnail uploaded to the media host
	ts.login(t, "admin@x.com", "secret1")
	body := courseBody()
	body["thumbnail"] = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))
	resp = ts.postJSON(t, "/api/v1/courses", body)

	var created struct {
		Success bool `json:"success"`
		Course  struct {
			ID        string `json:"id"`
			Thumbnail struct {
				PublicID string `json:"publicId"`
				URL      string `json:"url"`
			} `json:"thumbnail"`
		} `json:"course"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	testutil.AssertJSONResponse(t, resp, &created)
	require.True(t, created.Success)
	assert.NotEmpty(t, created.Course.Thumbnail.PublicID)
}

func TestCourseGet_PublicAndSanitized(t *testing.T) {
	ts := newTestServer(t)
	course := testutil.NewCourseBuilder().
		WithSection(domain.Section{
			Title:        "Getting started",
			VideoURL:     "https://media.test/secret.mp4",
			VideoSection: "Basics",
		}).
		Build(t, ts.env.Courses)

	resp := ts.get(t, "/api/v1/courses/"+course.ID.String())
	var body struct {
		Success bool `json:"success"`
		Course  struct {
			Sections []domain.Section `json:"courseData"`
		} `json:"course"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Course.Sections, 1)
	assert.Empty(t, body.Course.Sections[0].VideoURL, "video URL must not leak on public reads")
}

func TestCourseContent_RequiresEnrollment(t *testing.T) {
	ts := newTestServer(t)
	course := testutil.NewCourseBuilder().
		WithSection(domain.Section{Title: "Getting started", VideoURL: "https://media.test/secret.mp4"}).
		Build(t, ts.env.Courses)

	testutil.NewUserBuilder().WithEmail("outsider@x.com").WithPassword("secret1").Build(t, ts.env.Users)
	testutil.NewUserBuilder().WithEmail("student@x.com").WithPassword("secret1").WithCourse(course.ID.String()).Build(t, ts.env.Users)

	// Unauthenticated
	resp := ts.get(t, "/api/v1/courses/"+course.ID.String()+"/content")
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

	// Not enrolled
	ts.login(t, "outsider@x.com", "secret1")
	resp = ts.get(t, "/api/v1/courses/"+course.ID.String()+"/content")
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "not enrolled")

	// Enrolled user sees the full content
	ts.login(t, "student@x.com", "secret1")
	resp = ts.get(t, "/api/v1/courses/"+course.ID.String()+"/content")
	var body struct {
		Success bool             `json:"success"`
		Content []domain.Section `json:"content"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Content, 1)
	assert.Equal(t, "https://media.test/secret.mp4", body.Content[0].VideoURL)
}

func TestCourseList_Public(t *testing.T) {
	ts := newTestServer(t)
	testutil.NewCourseBuilder().WithName("Course A").Build(t, ts.env.Courses)
	testutil.NewCourseBuilder().WithName("Course B").Build(t, ts.env.Courses)

	resp := ts.get(t, "/api/v1/courses")
	var body struct {
		Success bool              `json:"success"`
		Courses []json.RawMessage `json:"courses"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &body)
	require.True(t, body.Success)
	assert.Len(t, body.Courses, 2)
}
