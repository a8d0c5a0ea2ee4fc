package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/service"
	"gorm.io/gorm"
)

// FakeUserRepo is an in-memory repository.UserRepository. Not-found lookups
// return gorm.ErrRecordNotFound to match the postgres implementation.
type FakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *FakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// Count returns the number of stored users.
func (r *FakeUserRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// FakeCourseRepo is an in-memory repository.CourseRepository.
type FakeCourseRepo struct {
	mu      sync.Mutex
	courses map[uuid.UUID]*domain.Course
	GetAllN int // number of GetAll calls, for cache assertions
	GetN    int // number of GetByID calls
}

func NewFakeCourseRepo() *FakeCourseRepo {
	return &FakeCourseRepo{courses: make(map[uuid.UUID]*domain.Course)}
}

func (r *FakeCourseRepo) Create(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

func (r *FakeCourseRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetN++
	c, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *FakeCourseRepo) GetAll(_ context.Context) ([]*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetAllN++
	out := make([]*domain.Course, 0, len(r.courses))
	for _, c := range r.courses {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *FakeCourseRepo) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

// FakeMailer records activation mails instead of sending them.
type FakeMailer struct {
	mu    sync.Mutex
	Sent  []SentMail
	Fail  bool
	Error error
}

type SentMail struct {
	Email     string
	FirstName string
	Code      string
}

func (m *FakeMailer) SendActivationEmail(_ context.Context, email, firstName, code string) error {
	if m.Fail {
		if m.Error != nil {
			return m.Error
		}
		return fmt.Errorf("smtp unavailable")
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, SentMail{Email: email, FirstName: firstName, Code: code})
	m.mu.Unlock()
	return nil
}

// LastCode returns the activation code of the most recent mail.
func (m *FakeMailer) LastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Code
}

// FakeMediaStore records uploads and deletions in memory.
type FakeMediaStore struct {
	mu      sync.Mutex
	nextID  int
	Stored  map[string][]byte
	Deleted []string
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{Stored: make(map[string][]byte)}
}

func (m *FakeMediaStore) UploadImage(_ context.Context, data []byte, folder string) (*service.UploadedImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	publicID := fmt.Sprintf("%s/img-%d", folder, m.nextID)
	m.Stored[publicID] = data
	return &service.UploadedImage{
		PublicID: publicID,
		URL:      "https://media.test/" + publicID,
	}, nil
}

func (m *FakeMediaStore) DeleteImage(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Stored, publicID)
	m.Deleted = append(m.Deleted, publicID)
	return nil
}
