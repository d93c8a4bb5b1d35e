package usecase

import (
	"context"

	"github.com/fastygo/shopbot/domain"
)

// AuditLog abstracts the log channel sink so use cases stay transport-agnostic.
// Recording is best effort: callers log a failure and carry on.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// RoleGranter applies role rewards through the guild.
type RoleGranter interface {
	AddRole(ctx context.Context, userID, roleID string) error
}
