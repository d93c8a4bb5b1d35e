package repository

import (
	"context"

	"github.com/fastygo/shopbot/domain"
)

type SettingRepository interface {
	List() []*domain.Setting
	Get(id string) (*domain.Setting, error)
	Set(ctx context.Context, id string, value domain.SettingValue) error
	Reset(ctx context.Context, id string) error
}
