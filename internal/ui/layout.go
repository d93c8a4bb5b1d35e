package ui

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	MaxRows          = 5
	MaxButtonsPerRow = 5
)

var ErrLayoutOverflow = errors.New("ui: components do not fit in five rows")

// Layout groups components into action rows. Consecutive buttons share a row of up to
// five; a select always takes a row of its own.
func Layout(components []Component, render func(c Component) discordgo.MessageComponent) ([]discordgo.MessageComponent, error) {
	var (
		rows    []discordgo.MessageComponent
		current []discordgo.MessageComponent
	)
	flush := func() {
		if len(current) > 0 {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
		}
	}
	for _, c := range components {
		if c.Kind() == KindSelect {
			flush()
			rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{render(c)}})
			continue
		}
		if len(current) == MaxButtonsPerRow {
			flush()
		}
		current = append(current, render(c))
	}
	flush()
	if len(rows) > MaxRows {
		return nil, ErrLayoutOverflow
	}
	return rows, nil
}

// CustomID builds the routing identifier "<name>:<session>+<role>".
func CustomID(name, session, role string) string {
	return name + ":" + session + "+" + role
}

// ParseCustomID splits an identifier built by CustomID.
func ParseCustomID(id string) (name, session, role string, ok bool) {
	name, rest, found := strings.Cut(id, ":")
	if !found || name == "" {
		return "", "", "", false
	}
	session, role, found = strings.Cut(rest, "+")
	if !found || session == "" || role == "" {
		return "", "", "", false
	}
	return name, session, role, true
}
