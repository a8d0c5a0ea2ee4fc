package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	firstName string
	lastName  string
	email     string
	password  string
	role      domain.Role
	courses   []domain.CourseRef
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		firstName: "Test",
		lastName:  "User",
		email:     fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
		role:      domain.RoleUser,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

func (b *UserBuilder) WithCourse(courseID string) *UserBuilder {
	b.courses = append(b.courses, domain.CourseRef{CourseID: courseID})
	return b
}

// Build creates the user in the fake repo and returns it with the raw password.
func (b *UserBuilder) Build(t *testing.T, repo *FakeUserRepo) (*domain.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	var courses datatypes.JSON
	if len(b.courses) > 0 {
		data, err := json.Marshal(b.courses)
		if err != nil {
			t.Fatalf("failed to marshal courses: %v", err)
		}
		courses = datatypes.JSON(data)
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		Email:        b.email,
		PasswordHash: string(hashed),
		Role:         b.role,
		IsVerified:   true,
		Courses:      courses,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// CourseBuilder creates test courses.
type CourseBuilder struct {
	name     string
	price    float64
	sections []domain.Section
}

func NewCourseBuilder() *CourseBuilder {
	return &CourseBuilder{
		name:  fmt.Sprintf("Course %s", uuid.New().String()[:8]),
		price: 49.99,
	}
}

func (b *CourseBuilder) WithName(name string) *CourseBuilder {
	b.name = name
	return b
}

func (b *CourseBuilder) WithSection(section domain.Section) *CourseBuilder {
	b.sections = append(b.sections, section)
	return b
}

// Build creates the course in the fake repo.
func (b *CourseBuilder) Build(t *testing.T, repo *FakeCourseRepo) *domain.Course {
	t.Helper()

	var sections datatypes.JSON
	if len(b.sections) > 0 {
		data, err := json.Marshal(b.sections)
		if err != nil {
			t.Fatalf("failed to marshal sections: %v", err)
		}
		sections = datatypes.JSON(data)
	}

	course := &domain.Course{
		ID:          uuid.New(),
		Name:        b.name,
		Description: "A test course",
		Price:       b.price,
		Tags:        "testing",
		Level:       "beginner",
		DemoURL:     "https://media.test/demo.mp4",
		Sections:    sections,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := repo.Create(context.Background(), course); err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	return course
}
