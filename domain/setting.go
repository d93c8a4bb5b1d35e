package domain

import "strconv"

// SettingType is fixed when a setting is defined and never changes.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingBool    SettingType = "bool"
	SettingNumber  SettingType = "number"
	SettingChannel SettingType = "channel"
	SettingRole    SettingType = "role"
	SettingUser    SettingType = "user"
)

// Well known settings.
const (
	SettingLogChannel    = "log-channel"
	SettingPurchaseLog   = "purchase-log"
	SettingShopAdminRole = "shop-admin-role"
	SettingEmbedColor    = "embed-color"
	SettingBotName       = "bot-name"
)

// SettingValue is a closed set of typed setting values.
type SettingValue interface {
	Type() SettingType
	Accept(v SettingVisitor) string
	isSettingValue()
}

// SettingVisitor renders every SettingValue variant.
type SettingVisitor interface {
	VisitString(v StringValue) string
	VisitBool(v BoolValue) string
	VisitNumber(v NumberValue) string
	VisitChannel(v ChannelValue) string
	VisitRole(v RoleValue) string
	VisitUser(v UserValue) string
}

type StringValue string
type BoolValue bool
type NumberValue float64
type ChannelValue string
type RoleValue string
type UserValue string

func (StringValue) Type() SettingType  { return SettingString }
func (BoolValue) Type() SettingType    { return SettingBool }
func (NumberValue) Type() SettingType  { return SettingNumber }
func (ChannelValue) Type() SettingType { return SettingChannel }
func (RoleValue) Type() SettingType    { return SettingRole }
func (UserValue) Type() SettingType    { return SettingUser }

func (v StringValue) Accept(s SettingVisitor) string  { return s.VisitString(v) }
func (v BoolValue) Accept(s SettingVisitor) string    { return s.VisitBool(v) }
func (v NumberValue) Accept(s SettingVisitor) string  { return s.VisitNumber(v) }
func (v ChannelValue) Accept(s SettingVisitor) string { return s.VisitChannel(v) }
func (v RoleValue) Accept(s SettingVisitor) string    { return s.VisitRole(v) }
func (v UserValue) Accept(s SettingVisitor) string    { return s.VisitUser(v) }

func (StringValue) isSettingValue()  {}
func (BoolValue) isSettingValue()    {}
func (NumberValue) isSettingValue()  {}
func (ChannelValue) isSettingValue() {}
func (RoleValue) isSettingValue()    {}
func (UserValue) isSettingValue()    {}

// Setting is a typed, nullable configuration entry.
type Setting struct {
	ID    string
	Name  string
	Type  SettingType
	Value SettingValue
}

// IsSet reports whether the setting holds a value.
func (s *Setting) IsSet() bool {
	return s != nil && s.Value != nil
}

// Display renders the current value the way Discord shows mentions.
func (s *Setting) Display() string {
	if !s.IsSet() {
		return "Unset"
	}
	return s.Value.Accept(mentionRenderer{})
}

type mentionRenderer struct{}

func (mentionRenderer) VisitString(v StringValue) string { return string(v) }
func (mentionRenderer) VisitBool(v BoolValue) string {
	if v {
		return "Enabled"
	}
	return "Disabled"
}
func (mentionRenderer) VisitNumber(v NumberValue) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}
func (mentionRenderer) VisitChannel(v ChannelValue) string { return "<#" + string(v) + ">" }
func (mentionRenderer) VisitRole(v RoleValue) string       { return "<@&" + string(v) + ">" }
func (mentionRenderer) VisitUser(v UserValue) string       { return "<@" + string(v) + ">" }
