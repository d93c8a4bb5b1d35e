package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/internal/infrastructure/buffer"
)

// ConnectionHealth abstracts the gateway monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// ChannelSender posts a message to a guild channel.
type ChannelSender interface {
	Send(ctx context.Context, channelID, content string) error
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention drops lines that could not be delivered within this window.
	Retention time.Duration
}

// AuditProcessor delivers audit lines and keeps the ones the gateway refused in the buffer
// until a later drain succeeds.
type AuditProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	sender  ChannelSender
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewAuditProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	sender ChannelSender,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *AuditProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ap := &AuditProcessor{
		store:   store,
		monitor: monitor,
		sender:  sender,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", max(int(cfg.Interval.Seconds()), 1))
	_, _ = ap.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := ap.Drain(ctx); err != nil {
			ap.logger.Error("audit drain failed", zap.Error(err))
		}
	})

	return ap
}

// Start launches the cron scheduler.
func (ap *AuditProcessor) Start() {
	if ap == nil || ap.cron == nil {
		return
	}
	ap.cron.Start()
	ap.logger.Info("audit processor started")
}

// Stop waits for a running drain, at most until ctx is done.
func (ap *AuditProcessor) Stop(ctx context.Context) {
	if ap == nil || ap.cron == nil {
		return
	}
	stopCtx := ap.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ap.logger.Info("audit processor stopped")
}

// Drain delivers buffered lines in order. A line that fails is retried on later drains
// and dropped after MaxRetries attempts.
func (ap *AuditProcessor) Drain(ctx context.Context) error {
	if ap == nil || ap.store == nil {
		return nil
	}
	if ap.monitor != nil && !ap.monitor.IsOnline() {
		ap.logger.Debug("skipping audit drain (offline)")
		return nil
	}

	if removed, err := ap.store.Cleanup(time.Now().Add(-ap.cfg.Retention)); err != nil {
		ap.logger.Warn("audit buffer cleanup failed", zap.Error(err))
	} else if removed > 0 {
		ap.logger.Warn("dropped stale audit lines", zap.Int("count", removed))
	}

	items, err := ap.store.GetBatch(ap.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := ap.sender.Send(ctx, item.ChannelID, item.Content); err != nil {
			ap.logger.Error("failed to deliver audit line",
				zap.String("item_id", item.ID),
				zap.String("channel_id", item.ChannelID),
				zap.Error(err))

			item.Retries++
			if item.Retries >= ap.cfg.MaxRetries {
				ap.logger.Warn("dropping audit line (max retries reached)", zap.String("item_id", item.ID))
				_ = ap.store.Remove(item)
				continue
			}
			if err := ap.store.Requeue(item); err != nil {
				ap.logger.Error("failed to requeue audit line", zap.Error(err))
			}
			continue
		}

		if err := ap.store.Remove(item); err != nil {
			ap.logger.Warn("failed to purge delivered audit line", zap.Error(err))
		}
	}
	return nil
}

// Deliver sends item immediately when the gateway is up and buffers it otherwise.
func (ap *AuditProcessor) Deliver(ctx context.Context, item buffer.Item) error {
	if ap == nil || ap.store == nil {
		return errors.New("audit processor not configured")
	}

	if ap.monitor == nil || ap.monitor.IsOnline() {
		err := ap.sender.Send(ctx, item.ChannelID, item.Content)
		if err == nil {
			return nil
		}
		ap.logger.Warn("immediate audit delivery failed, buffering", zap.Error(err))
	}
	return ap.store.Enqueue(item)
}

// Size returns the number of buffered lines.
func (ap *AuditProcessor) Size() int {
	if ap == nil || ap.store == nil {
		return 0
	}
	size, err := ap.store.Size()
	if err != nil {
		return 0
	}
	return size
}
