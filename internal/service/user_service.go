package service

import (
	"context"
	"strings"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository"
)

// UserService describes user lifecycle operations.
type UserService interface {
	// Register creates the user once; later calls for the same id are
	// no-ops and report false.
	Register(ctx context.Context, id int64, username string) (bool, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	opts  Options
}

func NewUserService(users repository.UserRepository, opts Options) UserService {
	return &userService{users: users, opts: opts.withDefaults()}
}

func (s *userService) Register(ctx context.Context, id int64, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = domain.DefaultUsername
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	created, err := s.users.Register(ctx, &domain.User{ID: id, Username: username})
	if err != nil {
		return false, storeError("register user", err)
	}

	log := s.opts.Logger.WithField("user_id", id)
	if created {
		log.WithField("username", username).Info("user registered")
		invalidateLeaderboard(ctx, s.opts.Cache, log)
	} else {
		log.Debug("user already registered")
	}
	return created, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return user, nil
}
