// Package backup snapshots the progression store and ships it to object storage.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quest-tracker/internal/repository/sqlite"
	"quest-tracker/internal/storage"
)

const defaultKeyPrefix = "quest-backups"

type Config struct {
	Bucket    string
	KeyPrefix string
	Logger    logrus.FieldLogger
}

type Service struct {
	db    *sql.DB
	store storage.Service
	cfg   Config
	now   func() time.Time
	newID func() string
}

func NewService(db *sql.DB, store storage.Service, cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Service{
		db:    db,
		store: store,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Run writes a consistent copy of the database to a temporary file and
// uploads it. It returns the remote location.
func (s *Service) Run(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "quest-backup-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	snapshot := filepath.Join(dir, "snapshot.db")
	if err := sqlite.Snapshot(ctx, s.db, snapshot); err != nil {
		return "", err
	}

	key := path.Join(s.cfg.KeyPrefix, fmt.Sprintf("%s-%s.db", s.now().UTC().Format("20060102T150405Z"), s.newID()))
	log := s.cfg.Logger.WithField("key", key)

	location, err := s.store.UploadFile(ctx, snapshot, storage.UploadOptions{
		Bucket: s.cfg.Bucket,
		Key:    key,
		ProgressCallback: func(done, total int64) {
			log.WithFields(logrus.Fields{"done": done, "total": total}).Debug("backup upload progress")
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	log.WithField("location", location).Info("backup uploaded")
	return location, nil
}

// List returns the snapshots stored under the configured prefix.
func (s *Service) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return s.store.ListObjects(ctx, s.cfg.Bucket, s.cfg.KeyPrefix+"/")
}
