package jsonstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var documentNames = []string{"currencies.json", "shops.json", "accounts.json", "settings.json"}

func docPath(dir, name string) string {
	return filepath.Join(dir, name)
}

// Store groups the four collections. Load order matters: shops resolve currencies and
// accounts resolve both currencies and products.
type Store struct {
	Currencies *Currencies
	Shops      *Shops
	Accounts   *Accounts
	Settings   *Settings

	dir    string
	logger *zap.Logger
}

// Open loads every document found in dir. Missing documents start empty.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	currencies := newCurrencies(dir)
	shops := newShops(dir, currencies)
	accounts := newAccounts(dir, currencies, shops)
	settings := newSettings(dir)

	if err := currencies.load(); err != nil {
		return nil, err
	}
	droppedShops, droppedProducts, err := shops.load()
	if err != nil {
		return nil, err
	}
	droppedBalances, err := accounts.load()
	if err != nil {
		return nil, err
	}
	if err := settings.load(); err != nil {
		return nil, err
	}

	logger.Info("store loaded",
		zap.String("dir", dir),
		zap.Int("currencies", currencies.Len()),
		zap.Int("shops", shops.Len()),
		zap.Int("accounts", accounts.Len()),
		zap.Int("dropped_shops", droppedShops),
		zap.Int("dropped_products", droppedProducts),
		zap.Int("dropped_balances", droppedBalances))

	return &Store{
		Currencies: currencies,
		Shops:      shops,
		Accounts:   accounts,
		Settings:   settings,
		dir:        dir,
		logger:     logger,
	}, nil
}

// Flush persists every collection. Failures are logged and reported as false.
func (s *Store) Flush() bool {
	report := func(name string, err error) {
		s.logger.Error("failed to persist collection", zap.String("collection", name), zap.Error(err))
	}
	ok := s.Currencies.Save(report)
	ok = s.Shops.Save(report) && ok
	ok = s.Accounts.Save(report) && ok
	ok = s.Settings.Save(report) && ok
	return ok
}

// Backup copies the current documents into a timestamped folder under dest and returns its path.
func (s *Store) Backup(dest string) (string, error) {
	target := filepath.Join(dest, time.Now().UTC().Format("20060102-150405"))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}
	for _, name := range documentNames {
		data, err := os.ReadFile(docPath(s.dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("backup %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(target, name), data, 0o600); err != nil {
			return "", fmt.Errorf("backup %s: %w", name, err)
		}
	}
	return target, nil
}
