package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	courseKeyPrefix = "course:"
	courseListKey   = "courses:all"
	courseCacheTTL  = 30 * time.Minute
)

type CourseService struct {
	courseRepo repository.CourseRepository
	cache      repository.SessionCache
	media      MediaStore
}

func NewCourseService(courseRepo repository.CourseRepository, cache repository.SessionCache, media MediaStore) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		cache:      cache,
		media:      media,
	}
}

type CourseInput struct {
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Price          float64             `json:"price"`
	EstimatedPrice float64             `json:"estimatedPrice"`
	Tags           string              `json:"tags"`
	Level          string              `json:"level"`
	DemoURL        string              `json:"demoUrl"`
	Benefits       []domain.TitledItem `json:"benefits"`
	Prerequisites  []domain.TitledItem `json:"prerequisites"`
	Sections       []domain.Section    `json:"courseData"`

	// Thumbnail holds raw image bytes when the client sends a new image.
	Thumbnail []byte `json:"-"`
}

func (in CourseInput) validate() error {
	if in.Name == "" || in.Description == "" {
		return fmt.Errorf("%w: course name and description are required", domain.ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: course price is required", domain.ErrValidation)
	}
	if in.Tags == "" || in.Level == "" || in.DemoURL == "" {
		return fmt.Errorf("%w: course tags, level and demoUrl are required", domain.ErrValidation)
	}
	return nil
}

// Create persists a new course, uploading the thumbnail to the media host
// first when one is provided.
func (s *CourseService) Create(ctx context.Context, input CourseInput) (*domain.Course, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	course := &domain.Course{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := applyCourseInput(course, input); err != nil {
		return nil, err
	}

	if len(input.Thumbnail) > 0 {
		uploaded, err := s.media.UploadImage(ctx, input.Thumbnail, "courses")
		if err != nil {
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
		course.Thumbnail = domain.Thumbnail{PublicID: uploaded.PublicID, URL: uploaded.URL}
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

// Update edits a course. A replacement thumbnail deletes the previous media
// object before uploading the new one.
func (s *CourseService) Update(ctx context.Context, id uuid.UUID, input CourseInput) (*domain.Course, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	if len(input.Thumbnail) > 0 {
		if course.Thumbnail.PublicID != "" {
			if err := s.media.DeleteImage(ctx, course.Thumbnail.PublicID); err != nil {
				return nil, fmt.Errorf("delete old thumbnail: %w", err)
			}
		}
		uploaded, err := s.media.UploadImage(ctx, input.Thumbnail, "courses")
		if err != nil {
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
		course.Thumbnail = domain.Thumbnail{PublicID: uploaded.PublicID, URL: uploaded.URL}
	}

	if err := applyCourseInput(course, input); err != nil {
		return nil, err
	}
	course.UpdatedAt = time.Now()

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

// Get returns a sanitized course through the read cache.
func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	key := courseKeyPrefix + id.String()
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var course domain.Course
		if err := json.Unmarshal(data, &course); err == nil {
			return &course, nil
		}
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	sanitized, err := sanitizeCourse(course)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(sanitized); err == nil {
		if err := s.cache.Set(ctx, key, data, courseCacheTTL); err != nil {
			log.Printf("ERROR [course.Get] cache write failed: %v", err)
		}
	}

	return sanitized, nil
}

// List returns all courses, sanitized, through the read cache.
func (s *CourseService) List(ctx context.Context) ([]*domain.Course, error) {
	if data, err := s.cache.Get(ctx, courseListKey); err == nil && data != nil {
		var courses []*domain.Course
		if err := json.Unmarshal(data, &courses); err == nil {
			return courses, nil
		}
	}

	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*domain.Course, len(courses))
	for i, c := range courses {
		sc, err := sanitizeCourse(c)
		if err != nil {
			return nil, err
		}
		sanitized[i] = sc
	}

	if data, err := json.Marshal(sanitized); err == nil {
		if err := s.cache.Set(ctx, courseListKey, data, courseCacheTTL); err != nil {
			log.Printf("ERROR [course.List] cache write failed: %v", err)
		}
	}

	return sanitized, nil
}

// ContentFor returns the full course sections for an enrolled user.
func (s *CourseService) ContentFor(ctx context.Context, user *domain.User, courseID uuid.UUID) ([]domain.Section, error) {
	if !user.EnrolledIn(courseID.String()) {
		return nil, domain.ErrNotEnrolled
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	var sections []domain.Section
	if len(course.Sections) > 0 {
		if err := json.Unmarshal(course.Sections, &sections); err != nil {
			return nil, fmt.Errorf("decode course sections: %w", err)
		}
	}
	return sections, nil
}

func (s *CourseService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, courseKeyPrefix+id.String()); err != nil {
		log.Printf("ERROR [course.invalidate] delete course key: %v", err)
	}
	if err := s.cache.Delete(ctx, courseListKey); err != nil {
		log.Printf("ERROR [course.invalidate] delete list key: %v", err)
	}
}

func applyCourseInput(course *domain.Course, input CourseInput) error {
	course.Name = input.Name
	course.Description = input.Description
	course.Price = input.Price
	course.EstimatedPrice = input.EstimatedPrice
	course.Tags = input.Tags
	course.Level = input.Level
	course.DemoURL = input.DemoURL

	var err error
	if course.Benefits, err = marshalJSONColumn(input.Benefits); err != nil {
		return err
	}
	if course.Prerequisites, err = marshalJSONColumn(input.Prerequisites); err != nil {
		return err
	}
	if course.Sections, err = marshalJSONColumn(input.Sections); err != nil {
		return err
	}
	return nil
}

func marshalJSONColumn(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal course field: %w", err)
	}
	return datatypes.JSON(data), nil
}

// sanitizeCourse strips the protected section fields (video URLs, links,
// suggestions, questions) from a copy of the course for public reads.
func sanitizeCourse(course *domain.Course) (*domain.Course, error) {
	out := *course

	if len(course.Sections) == 0 {
		return &out, nil
	}

	var sections []domain.Section
	if err := json.Unmarshal(course.Sections, &sections); err != nil {
		return nil, fmt.Errorf("decode course sections: %w", err)
	}
	for i := range sections {
		sections[i].VideoURL = ""
		sections[i].Links = nil
		sections[i].Suggestion = ""
		sections[i].Questions = nil
	}

	data, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("encode sanitized sections: %w", err)
	}
	out.Sections = datatypes.JSON(data)
	return &out, nil
}
