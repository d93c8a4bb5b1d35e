package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/repository"
)

// definitions lists every setting the bot knows about, in display order.
var definitions = []domain.Setting{
	{ID: domain.SettingLogChannel, Name: "Log channel", Type: domain.SettingChannel},
	{ID: domain.SettingPurchaseLog, Name: "Log purchases", Type: domain.SettingBool, Value: domain.BoolValue(true)},
	{ID: domain.SettingShopAdminRole, Name: "Shop admin role", Type: domain.SettingRole},
	{ID: domain.SettingEmbedColor, Name: "Embed color", Type: domain.SettingNumber},
	{ID: domain.SettingBotName, Name: "Bot name", Type: domain.SettingString},
}

type settingDTO struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Type  domain.SettingType `json:"type"`
	Value json.RawMessage    `json:"value"`
}

func toSettingDTO(s *domain.Setting) any {
	dto := settingDTO{ID: s.ID, Name: s.Name, Type: s.Type, Value: json.RawMessage("null")}
	if s.Value != nil {
		if raw, err := json.Marshal(s.Value); err == nil {
			dto.Value = raw
		}
	}
	return dto
}

// decodeSettingValue parses raw according to t. A JSON null yields a nil value.
func decodeSettingValue(t domain.SettingType, raw json.RawMessage) (domain.SettingValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case domain.SettingBool:
		var v bool
		err := json.Unmarshal(raw, &v)
		return domain.BoolValue(v), err
	case domain.SettingNumber:
		var v float64
		err := json.Unmarshal(raw, &v)
		return domain.NumberValue(v), err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t {
	case domain.SettingString:
		return domain.StringValue(v), nil
	case domain.SettingChannel:
		return domain.ChannelValue(v), nil
	case domain.SettingRole:
		return domain.RoleValue(v), nil
	case domain.SettingUser:
		return domain.UserValue(v), nil
	default:
		return nil, fmt.Errorf("unknown setting type %q", t)
	}
}

// Settings is the typed key-value collection backed by settings.json.
type Settings struct {
	*collection[domain.Setting]
}

func newSettings(dir string) *Settings {
	return &Settings{newCollection("settings", document{path: docPath(dir, "settings.json")}, toSettingDTO, nil)}
}

// load seeds every definition, then applies stored values whose type still matches.
func (s *Settings) load() error {
	data, err := s.doc.read()
	if err != nil {
		return err
	}
	_, raws, err := decodeOrdered(data)
	if err != nil {
		return fmt.Errorf("settings.json: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, def := range definitions {
		setting := def
		if raw, ok := raws[def.ID]; ok {
			var dto settingDTO
			if err := json.Unmarshal(raw, &dto); err != nil {
				return fmt.Errorf("settings.json %q: %w", def.ID, err)
			}
			if dto.Type == def.Type {
				value, err := decodeSettingValue(def.Type, dto.Value)
				if err != nil {
					return fmt.Errorf("settings.json %q: %w", def.ID, err)
				}
				setting.Value = value
			}
		}
		s.insertLocked(setting.ID, &setting)
	}
	return nil
}

func (s *Settings) List() []*domain.Setting {
	var out []*domain.Setting
	s.read(func() { out = s.listLocked() })
	return out
}

func (s *Settings) Get(id string) (*domain.Setting, error) {
	var (
		setting *domain.Setting
		ok      bool
	)
	s.read(func() { setting, ok = s.getLocked(id) })
	if !ok {
		return nil, domain.ErrSettingNotFound
	}
	return setting, nil
}

// Set stores value. A nil value clears the setting; otherwise value must match the fixed type.
func (s *Settings) Set(ctx context.Context, id string, value domain.SettingValue) error {
	return s.write(ctx, func() error {
		setting, ok := s.getLocked(id)
		if !ok {
			return domain.ErrSettingNotFound
		}
		if value != nil && value.Type() != setting.Type {
			return domain.ErrSettingType
		}
		setting.Value = value
		return nil
	})
}

// Reset clears the stored value.
func (s *Settings) Reset(ctx context.Context, id string) error {
	return s.Set(ctx, id, nil)
}

// String returns the value of a string setting, or fallback when unset.
func (s *Settings) String(id, fallback string) string {
	setting, err := s.Get(id)
	if err != nil || !setting.IsSet() {
		return fallback
	}
	if v, ok := setting.Value.(domain.StringValue); ok {
		return string(v)
	}
	return fallback
}

// Bool returns the value of a bool setting, or fallback when unset.
func (s *Settings) Bool(id string, fallback bool) bool {
	setting, err := s.Get(id)
	if err != nil || !setting.IsSet() {
		return fallback
	}
	if v, ok := setting.Value.(domain.BoolValue); ok {
		return bool(v)
	}
	return fallback
}

// Ref returns the id held by a channel, role or user setting.
func (s *Settings) Ref(id string) (string, bool) {
	setting, err := s.Get(id)
	if err != nil || !setting.IsSet() {
		return "", false
	}
	switch v := setting.Value.(type) {
	case domain.ChannelValue:
		return string(v), v != ""
	case domain.RoleValue:
		return string(v), v != ""
	case domain.UserValue:
		return string(v), v != ""
	default:
		return "", false
	}
}

// Number returns the value of a number setting, or fallback when unset.
func (s *Settings) Number(id string, fallback float64) float64 {
	setting, err := s.Get(id)
	if err != nil || !setting.IsSet() {
		return fallback
	}
	if v, ok := setting.Value.(domain.NumberValue); ok {
		return float64(v)
	}
	return fallback
}

var _ repository.SettingRepository = (*Settings)(nil)
