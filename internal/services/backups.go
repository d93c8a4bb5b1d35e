package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Snapshotter is the document store as seen by the backup job.
type Snapshotter interface {
	Flush() bool
	Backup(dest string) (string, error)
}

type BackupConfig struct {
	Dir      string
	Interval time.Duration
	// Keep is the number of snapshot folders retained, oldest removed first.
	Keep int
}

// Backups periodically copies the documents into timestamped folders.
type Backups struct {
	store  Snapshotter
	cfg    BackupConfig
	logger *zap.Logger
	cron   *cron.Cron
}

func NewBackups(store Snapshotter, cfg BackupConfig, logger *zap.Logger) *Backups {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backups{
		store:  store,
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(cron.WithSeconds()),
	}
	schedule := fmt.Sprintf("@every %ds", max(int(cfg.Interval.Seconds()), 1))
	_, _ = b.cron.AddFunc(schedule, func() {
		if _, err := b.Run(); err != nil {
			b.logger.Error("backup failed", zap.Error(err))
		}
	})
	return b
}

func (b *Backups) Start() {
	b.cron.Start()
	b.logger.Info("backups scheduled", zap.String("dir", b.cfg.Dir), zap.Duration("interval", b.cfg.Interval))
}

func (b *Backups) Stop(ctx context.Context) {
	stopCtx := b.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// Run retries pending writes, takes one snapshot and prunes old ones.
func (b *Backups) Run() (string, error) {
	if !b.store.Flush() {
		b.logger.Warn("some documents could not be persisted before backup")
	}
	path, err := b.store.Backup(b.cfg.Dir)
	if err != nil {
		return "", err
	}
	b.logger.Info("backup written", zap.String("path", path))
	if err := b.prune(); err != nil {
		b.logger.Warn("failed to prune backups", zap.Error(err))
	}
	return path, nil
}

func (b *Backups) prune() error {
	entries, err := os.ReadDir(b.cfg.Dir)
	if err != nil {
		return err
	}
	var folders []string
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	if len(folders) <= b.cfg.Keep {
		return nil
	}
	// folder names are UTC timestamps, so lexical order is chronological
	sort.Strings(folders)
	for _, name := range folders[:len(folders)-b.cfg.Keep] {
		if err := os.RemoveAll(filepath.Join(b.cfg.Dir, name)); err != nil {
			return err
		}
	}
	return nil
}
