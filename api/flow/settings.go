package flow

import (
	"context"
	"fmt"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/domain"
)

func (f *Flows) settingsView(ctx context.Context, inv *command.Invocation) error {
	return f.listing(ctx, inv, "settings-view", "Settings", "", "There are no settings.", func() []string {
		settings := f.uc.ListSettings()
		lines := make([]string, 0, len(settings))
		for _, s := range settings {
			lines = append(lines, fmt.Sprintf("**%s** (`%s`): %s", s.Name, s.ID, s.Display()))
		}
		return lines
	})
}

// settingsSet returns the handler of "settings set <type>".
func (f *Flows) settingsSet(t domain.SettingType) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		value, err := settingValue(t, inv)
		if err != nil {
			return err
		}
		setting, err := f.uc.SetSetting(ctx, inv.String(command.OptSetting), value)
		if err != nil {
			return err
		}
		return f.reply(ctx, inv, fmt.Sprintf("✅ %s is now %s.", bold(setting.Name), setting.Display()))
	}
}

func settingValue(t domain.SettingType, inv *command.Invocation) (domain.SettingValue, error) {
	if !inv.Has(command.OptValue) {
		return nil, domain.Invalidf("the value is required")
	}
	switch t {
	case domain.SettingString:
		return domain.StringValue(inv.String(command.OptValue)), nil
	case domain.SettingBool:
		return domain.BoolValue(inv.Bool(command.OptValue)), nil
	case domain.SettingNumber:
		return domain.NumberValue(inv.Number(command.OptValue)), nil
	case domain.SettingChannel:
		return domain.ChannelValue(inv.Snowflake(command.OptValue)), nil
	case domain.SettingRole:
		return domain.RoleValue(inv.Snowflake(command.OptValue)), nil
	case domain.SettingUser:
		return domain.UserValue(inv.Snowflake(command.OptValue)), nil
	default:
		return nil, domain.Invalidf("unknown setting type %q", t)
	}
}

func (f *Flows) settingsReset(ctx context.Context, inv *command.Invocation) error {
	setting, err := f.uc.ResetSetting(ctx, inv.String(command.OptSetting))
	if err != nil {
		return err
	}
	return f.reply(ctx, inv, fmt.Sprintf("✅ %s was reset.", bold(setting.Name)))
}
