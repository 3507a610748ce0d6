package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository"
)

// DefaultOpTimeout bounds every store call when Options.OpTimeout is unset.
const DefaultOpTimeout = 5 * time.Second

// Options carries the ambient dependencies shared by all services.
type Options struct {
	Logger    logrus.FieldLogger
	OpTimeout time.Duration
	Cache     LeaderboardCache
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logrus.New()
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = DefaultOpTimeout
	}
	if o.Cache == nil {
		o.Cache = nopCache{}
	}
	return o
}

// InitStore creates every table owned by the given repositories. Any failure
// is reported as domain.ErrStorageUnavailable.
func InitStore(ctx context.Context, inits ...repository.Initializer) error {
	for _, init := range inits {
		if err := init.Init(ctx); err != nil {
			return fmt.Errorf("init store: %w: %w", domain.ErrStorageUnavailable, err)
		}
	}
	return nil
}

// storeError passes domain outcomes through and marks everything else as a
// storage failure.
func storeError(op string, err error) error {
	for _, known := range []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrNotCompletable,
		domain.ErrStorageUnavailable,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
