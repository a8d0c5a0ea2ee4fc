package service

import (
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/repository"
)

type Services struct {
	Tokens *TokenService
	Auth   *AuthService
	Course *CourseService
}

func NewServices(repos *repository.Repositories, cache repository.SessionCache, mailer Mailer, media MediaStore, cfg *config.Config) *Services {
	tokens := NewTokenService(cfg.Auth, cache)
	return &Services{
		Tokens: tokens,
		Auth:   NewAuthService(repos.User, tokens, mailer, media, cfg.Auth),
		Course: NewCourseService(repos.Course, cache, media),
	}
}
