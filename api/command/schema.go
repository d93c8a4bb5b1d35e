package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/fastygo/shopbot/domain"
)

// Option names shared by the schema and the flows reading them.
const (
	OptName        = "name"
	OptEmoji       = "emoji"
	OptDescription = "description"
	OptReservedTo  = "reserved-to"
	OptPosition    = "position"
	OptCode        = "code"
	OptPercent     = "percent"
	OptPrice       = "price"
	OptAction      = "action"
	OptRole        = "role"
	OptAmount      = "amount"
	OptUser        = "user"
	OptSetting     = "setting"
	OptValue       = "value"
)

var (
	manageServer int64 = discordgo.PermissionManageServer
	guildOnly         = false
)

func ptr[T any](v T) *T { return &v }

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func group(name, description string, subs ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        name,
		Description: description,
		Options:     subs,
	}
}

func text(name, description string, required bool, minLen, maxLen int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
		MinLength:   ptr(minLen),
		MaxLength:   maxLen,
	}
}

func typed(t discordgo.ApplicationCommandOptionType, name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        t,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func amount(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return text(name, description, required, 1, 16)
}

func emoji() *discordgo.ApplicationCommandOption {
	return text(OptEmoji, "An emoji shown next to the name", false, 1, 64)
}

func description() *discordgo.ApplicationCommandOption {
	return text(OptDescription, "A short description", false, 0, domain.DescriptionMax)
}

// Commands returns the command schema. settings supplies the choices of the settings commands.
func Commands(settings []*domain.Setting) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		admin("currency", "Manage currencies",
			subcommand("create", "Create a currency",
				text(OptName, "The currency name", true, 1, domain.CurrencyNameMax), emoji()),
			subcommand("remove", "Remove a currency"),
			subcommand("list", "List currencies"),
			group("edit", "Edit a currency",
				subcommand("name", "Rename a currency", text(OptValue, "The new name", true, 1, domain.CurrencyNameMax)),
				subcommand("emoji", "Change the emoji", text(OptValue, "The new emoji", false, 0, 64)),
			),
		),
		admin("shop", "Manage shops",
			subcommand("create", "Create a shop",
				text(OptName, "The shop name", true, 1, domain.ShopNameMax), emoji(), description(),
				typed(discordgo.ApplicationCommandOptionRole, OptReservedTo, "Only members with this role may buy", false)),
			subcommand("remove", "Remove a shop and its products"),
			subcommand("list", "List shops"),
			subcommand("reorder", "Move a shop in the listing",
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptPosition,
					Description: "The new position, starting at 1",
					Required:    true,
					MinValue:    ptr(1.0),
				}),
			group("edit", "Edit a shop",
				subcommand("name", "Rename a shop", text(OptValue, "The new name", true, 1, domain.ShopNameMax)),
				subcommand("description", "Change the description", text(OptValue, "The new description", true, 0, domain.DescriptionMax)),
				subcommand("emoji", "Change the emoji", text(OptValue, "The new emoji", false, 0, 64)),
				subcommand("reserved-to", "Reserve the shop to a role, or open it when omitted",
					typed(discordgo.ApplicationCommandOptionRole, OptValue, "The role", false)),
				subcommand("currency", "Change the currency of a shop"),
			),
			subcommand("discount-create", "Create a discount code",
				text(OptCode, "The code buyers type", true, 1, domain.DiscountCodeMax),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptPercent,
					Description: "The discount in percent",
					Required:    true,
					MinValue:    ptr(0.0),
					MaxValue:    100,
				}),
			subcommand("discount-remove", "Remove a discount code"),
		),
		admin("product", "Manage products",
			subcommand("add", "Add a product to a shop",
				text(OptName, "The product name", true, 1, domain.ProductNameMax),
				amount(OptPrice, "The price", true),
				emoji(), description(),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptAction,
					Description: "What happens on purchase instead of adding to the inventory",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Give a role", Value: string(domain.ActionGiveRole)},
						{Name: "Give currency", Value: string(domain.ActionGiveCurrency)},
					},
				},
				typed(discordgo.ApplicationCommandOptionRole, OptRole, "The role given by a give-role product", false),
				amount(OptAmount, "The amount given by a give-currency product", false)),
			subcommand("remove", "Remove a product"),
			subcommand("update", "Update a product",
				text(OptName, "The new name", false, 1, domain.ProductNameMax),
				amount(OptPrice, "The new price", false),
				emoji(), description()),
		),
		admin("account", "Manage member accounts",
			subcommand("view", "Show an account", typed(discordgo.ApplicationCommandOptionUser, OptUser, "The member, yourself when omitted", false)),
			subcommand("give", "Give currency to a member",
				typed(discordgo.ApplicationCommandOptionUser, OptUser, "The member", true),
				amount(OptAmount, "The amount", true)),
			subcommand("take", "Take currency from a member",
				typed(discordgo.ApplicationCommandOptionUser, OptUser, "The member", true),
				amount(OptAmount, "The amount", true)),
			subcommand("empty", "Clear every balance and item of a member",
				typed(discordgo.ApplicationCommandOptionUser, OptUser, "The member", true)),
		),
		admin("settings", "Manage bot settings",
			subcommand("view", "Show the settings"),
			group("set", "Change a setting", setSubcommands(settings)...),
			subcommand("reset", "Clear a setting", settingChoice(settings, "")),
		),
		{
			Name:         "buy",
			Description:  "Browse the shops and buy a product",
			DMPermission: &guildOnly,
		},
		{
			Name:         "inventory",
			Description:  "Show your balances and items",
			DMPermission: &guildOnly,
		},
	}
}

func admin(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		DefaultMemberPermissions: &manageServer,
		DMPermission:             &guildOnly,
		Options:                  options,
	}
}

func settingChoice(settings []*domain.Setting, t domain.SettingType) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptSetting,
		Description: "The setting",
		Required:    true,
	}
	for _, s := range settings {
		if t == "" || s.Type == t {
			opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: s.Name, Value: s.ID})
		}
	}
	return opt
}

// settingValueTypes maps each setting type to the option type of its value.
var settingValueTypes = []struct {
	setting domain.SettingType
	option  discordgo.ApplicationCommandOptionType
}{
	{domain.SettingString, discordgo.ApplicationCommandOptionString},
	{domain.SettingBool, discordgo.ApplicationCommandOptionBoolean},
	{domain.SettingNumber, discordgo.ApplicationCommandOptionNumber},
	{domain.SettingChannel, discordgo.ApplicationCommandOptionChannel},
	{domain.SettingRole, discordgo.ApplicationCommandOptionRole},
	{domain.SettingUser, discordgo.ApplicationCommandOptionUser},
}

// setSubcommands returns one sub-command per setting type in use.
func setSubcommands(settings []*domain.Setting) []*discordgo.ApplicationCommandOption {
	var subs []*discordgo.ApplicationCommandOption
	for _, vt := range settingValueTypes {
		choice := settingChoice(settings, vt.setting)
		if len(choice.Choices) == 0 {
			continue
		}
		subs = append(subs, subcommand(string(vt.setting), "Change a "+string(vt.setting)+" setting",
			choice, typed(vt.option, OptValue, "The new value", true)))
	}
	return subs
}
