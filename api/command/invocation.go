package command

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
	"github.com/fastygo/shopbot/usecase/economy"
)

// Invocation is a parsed slash command: the sub-command path and its leaf options.
type Invocation struct {
	Interaction *discordgo.Interaction
	// Path joins the command, group and sub-command names with spaces, e.g. "shop edit name".
	Path    string
	UserID  string
	GuildID string
	Roles   []string
	Admin   bool

	options map[string]*discordgo.ApplicationCommandInteractionDataOption
}

// Parse walks the nested sub-command options of a command interaction.
func Parse(i *discordgo.Interaction) (*Invocation, error) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil, domain.Invalidf("not a slash command")
	}
	data := i.ApplicationCommandData()
	inv := &Invocation{
		Interaction: i,
		UserID:      ui.UserID(i),
		GuildID:     i.GuildID,
		options:     map[string]*discordgo.ApplicationCommandInteractionDataOption{},
	}
	if i.Member != nil {
		inv.Roles = i.Member.Roles
		inv.Admin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	}

	path := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommand) {
		path = append(path, opts[0].Name)
		opts = opts[0].Options
	}
	for _, o := range opts {
		inv.options[o.Name] = o
	}
	inv.Path = strings.Join(path, " ")
	return inv, nil
}

// Buyer describes the invoking member for purchases.
func (inv *Invocation) Buyer() economy.Buyer {
	return economy.Buyer{UserID: inv.UserID, Roles: inv.Roles, Admin: inv.Admin}
}

// Has reports whether the option was supplied.
func (inv *Invocation) Has(name string) bool {
	_, ok := inv.options[name]
	return ok
}

func (inv *Invocation) String(name string) string {
	if o, ok := inv.options[name]; ok && o.Type == discordgo.ApplicationCommandOptionString {
		return o.StringValue()
	}
	return ""
}

// OptionalString returns nil when the option was omitted.
func (inv *Invocation) OptionalString(name string) *string {
	if !inv.Has(name) {
		return nil
	}
	v := inv.String(name)
	return &v
}

func (inv *Invocation) Int(name string) int64 {
	if o, ok := inv.options[name]; ok && o.Type == discordgo.ApplicationCommandOptionInteger {
		return o.IntValue()
	}
	return 0
}

func (inv *Invocation) Number(name string) float64 {
	if o, ok := inv.options[name]; ok && o.Type == discordgo.ApplicationCommandOptionNumber {
		return o.FloatValue()
	}
	return 0
}

func (inv *Invocation) Bool(name string) bool {
	if o, ok := inv.options[name]; ok && o.Type == discordgo.ApplicationCommandOptionBoolean {
		return o.BoolValue()
	}
	return false
}

// Snowflake returns the id behind a user, role, channel or mentionable option.
func (inv *Invocation) Snowflake(name string) string {
	o, ok := inv.options[name]
	if !ok {
		return ""
	}
	switch o.Type {
	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionMentionable:
		if id, ok := o.Value.(string); ok {
			return id
		}
	}
	return ""
}

// Amount parses a string option holding a money amount.
func (inv *Invocation) Amount(name string) (decimal.Decimal, error) {
	if !inv.Has(name) {
		return decimal.Zero, domain.Invalidf("the %s is required", name)
	}
	return domain.ParseAmount(inv.String(name))
}

// OptionalAmount returns nil when the option was omitted.
func (inv *Invocation) OptionalAmount(name string) (*decimal.Decimal, error) {
	if !inv.Has(name) {
		return nil, nil
	}
	amount, err := inv.Amount(name)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}
