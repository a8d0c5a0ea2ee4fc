package testutil

import (
	"time"

	"github.com/jmartin/coursehub/internal/cache"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/repository"
	"github.com/jmartin/coursehub/internal/service"
)

// TestConfig returns a configuration suitable for testing.
func TestConfig() *config.Config {
	return &config.Config{
		Port:        "0",
		Environment: "test",
		Origin:      "*",
		Auth: config.AuthConfig{
			AccessTokenSecret:  "test-access-secret",
			RefreshTokenSecret: "test-refresh-secret",
			ActivationSecret:   "test-activation-secret",
			AccessTokenTTL:     5 * time.Minute,
			RefreshTokenTTL:    72 * time.Hour,
			ActivationTTL:      5 * time.Minute,
		},
	}
}

// Env bundles the fakes behind a wired service layer for tests.
type Env struct {
	Cfg      *config.Config
	Users    *FakeUserRepo
	Courses  *FakeCourseRepo
	Cache    repository.SessionCache
	Mailer   *FakeMailer
	Media    *FakeMediaStore
	Services *service.Services
}

// NewEnv wires services against in-memory fakes.
func NewEnv() *Env {
	return NewEnvWithConfig(TestConfig())
}

// NewEnvWithConfig wires services against in-memory fakes using cfg.
func NewEnvWithConfig(cfg *config.Config) *Env {
	users := NewFakeUserRepo()
	courses := NewFakeCourseRepo()
	sessionCache := cache.NewMemoryCache()
	mailer := &FakeMailer{}
	media := NewFakeMediaStore()

	repos := &repository.Repositories{User: users, Course: courses}
	services := service.NewServices(repos, sessionCache, mailer, media, cfg)

	return &Env{
		Cfg:      cfg,
		Users:    users,
		Courses:  courses,
		Cache:    sessionCache,
		Mailer:   mailer,
		Media:    media,
		Services: services,
	}
}
