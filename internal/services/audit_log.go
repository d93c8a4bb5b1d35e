package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/infrastructure/buffer"
	"github.com/fastygo/shopbot/pkg/logger"
	"github.com/fastygo/shopbot/usecase"
)

// AuditSettings reads the settings that route audit lines.
type AuditSettings interface {
	Ref(id string) (string, bool)
	Bool(id string, fallback bool) bool
}

// AuditLog sends audit entries to the configured log channel through the processor.
type AuditLog struct {
	processor *AuditProcessor
	settings  AuditSettings
	logger    *zap.Logger
}

func NewAuditLog(processor *AuditProcessor, settings AuditSettings, logger *zap.Logger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{processor: processor, settings: settings, logger: logger}
}

// Record delivers entry, or does nothing when no log channel is set or purchase logging
// is switched off.
func (a *AuditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	channelID, ok := a.settings.Ref(domain.SettingLogChannel)
	if !ok {
		return nil
	}
	priority := buffer.PriorityDefault
	if entry.Kind == domain.AuditPurchase {
		if !a.settings.Bool(domain.SettingPurchaseLog, true) {
			return nil
		}
		priority = buffer.PriorityPurchase
	}

	item := buffer.Item{
		ID:        entry.ID,
		ChannelID: channelID,
		Kind:      string(entry.Kind),
		ActorID:   entry.ActorID,
		Content:   entry.Message,
		Priority:  priority,
		Timestamp: entry.Timestamp,
	}
	if err := a.processor.Deliver(ctx, item); err != nil {
		return err
	}
	logger.FromContext(ctx, a.logger).Debug("audit entry recorded", zap.String("kind", item.Kind))
	return nil
}

var _ usecase.AuditLog = (*AuditLog)(nil)
