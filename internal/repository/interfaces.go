package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	GetAll(ctx context.Context) ([]*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
}

// SessionCache is the key-value store backing live sessions and ad hoc
// read caches. Get returns (nil, nil) when the key is absent.
type SessionCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Repositories struct {
	User   UserRepository
	Course CourseRepository
}
