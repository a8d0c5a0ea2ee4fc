package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/service"
	"github.com/jmartin/coursehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCourseInput() service.CourseInput {
	return service.CourseInput{
		Name:        "Intro to Go",
		Description: "Learn Go from scratch",
		Price:       49.99,
		Tags:        "go,backend",
		Level:       "beginner",
		DemoURL:     "https://media.test/demo.mp4",
		Benefits:    []domain.TitledItem{{Title: "Build real services"}},
		Sections: []domain.Section{
			{
				Title:        "Getting started",
				Description:  "Setup and tooling",
				VideoURL:     "https://media.test/secret-video.mp4",
				VideoSection: "Basics",
				VideoLength:  12,
				Suggestion:   "Install Go first",
				Questions:    []domain.Comment{{User: "bob", Comment: "which version?"}},
			},
		},
	}
}

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("with thumbnail", func(t *testing.T) {
		env := testutil.NewEnv()
		input := validCourseInput()
		input.Thumbnail = []byte("image-bytes")

		course, err := env.Services.Course.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEmpty(t, course.Thumbnail.PublicID)
		assert.NotEmpty(t, course.Thumbnail.URL)
		assert.Contains(t, env.Media.Stored, course.Thumbnail.PublicID)
	})

	t.Run("missing required fields", func(t *testing.T) {
		env := testutil.NewEnv()
		_, err := env.Services.Course.Create(ctx, service.CourseInput{Name: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCourseService_Get_Sanitizes(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv()

	created, err := env.Services.Course.Create(ctx, validCourseInput())
	require.NoError(t, err)

	course, err := env.Services.Course.Get(ctx, created.ID)
	require.NoError(t, err)

	var sections []domain.Section
	require.NoError(t, json.Unmarshal(course.Sections, &sections))
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].VideoURL, "public reads must not expose video URLs")
	assert.Empty(t, sections[0].Suggestion)
	assert.Empty(t, sections[0].Questions)
	assert.Equal(t, "Getting started", sections[0].Title)
}

func TestCourseService_Get_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv()

	created, err := env.Services.Course.Create(ctx, validCourseInput())
	require.NoError(t, err)

	before := env.Courses.GetN
	_, err = env.Services.Course.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, env.Courses.GetN, "first read hits the store")

	_, err = env.Services.Course.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, env.Courses.GetN, "second read served from cache")
}

func TestCourseService_Get_NotFound(t *testing.T) {
	env := testutil.NewEnv()
	_, err := env.Services.Course.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestCourseService_Update_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv()

	created, err := env.Services.Course.Create(ctx, validCourseInput())
	require.NoError(t, err)

	// Prime the cache
	_, err = env.Services.Course.Get(ctx, created.ID)
	require.NoError(t, err)

	input := validCourseInput()
	input.Name = "Intro to Go, second edition"
	_, err = env.Services.Course.Update(ctx, created.ID, input)
	require.NoError(t, err)

	course, err := env.Services.Course.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go, second edition", course.Name)
}

func TestCourseService_Update_ReplacesThumbnail(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv()

	input := validCourseInput()
	input.Thumbnail = []byte("old-image")
	created, err := env.Services.Course.Create(ctx, input)
	require.NoError(t, err)
	oldID := created.Thumbnail.PublicID

	input = validCourseInput()
	input.Thumbnail = []byte("new-image")
	updated, err := env.Services.Course.Update(ctx, created.ID, input)
	require.NoError(t, err)

	assert.NotEqual(t, oldID, updated.Thumbnail.PublicID)
	assert.Contains(t, env.Media.Deleted, oldID)
}

func TestCourseService_List(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv()

	_, err := env.Services.Course.Create(ctx, validCourseInput())
	require.NoError(t, err)

	courses, err := env.Services.Course.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	var sections []domain.Section
	require.NoError(t, json.Unmarshal(courses[0].Sections, &sections))
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].VideoURL)

	// Second list comes from the cache
	before := env.Courses.GetAllN
	_, err = env.Services.Course.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, env.Courses.GetAllN)
}

func TestCourseService_ContentFor(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv()

	created, err := env.Services.Course.Create(ctx, validCourseInput())
	require.NoError(t, err)

	enrolled, _ := testutil.NewUserBuilder().WithCourse(created.ID.String()).Build(t, env.Users)
	outsider, _ := testutil.NewUserBuilder().Build(t, env.Users)

	content, err := env.Services.Course.ContentFor(ctx, enrolled, created.ID)
	require.NoError(t, err)
	require.Len(t, content, 1)
	assert.Equal(t, "https://media.test/secret-video.mp4", content[0].VideoURL)

	_, err = env.Services.Course.ContentFor(ctx, outsider, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotEnrolled)
}
