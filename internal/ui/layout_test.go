package ui

import (
	"errors"
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func buttons(n int) []Component {
	out := make([]Component, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Button{ID: "b" + strconv.Itoa(i), Label: "B"})
	}
	return out
}

func renderPlain(c Component) discordgo.MessageComponent {
	return c.Render(c.Role(), false)
}

func rowSizes(rows []discordgo.MessageComponent) []int {
	sizes := make([]int, 0, len(rows))
	for _, r := range rows {
		sizes = append(sizes, len(r.(discordgo.ActionsRow).Components))
	}
	return sizes
}

func TestLayoutGroupsButtons(t *testing.T) {
	rows, err := Layout(buttons(6), renderPlain)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	sizes := rowSizes(rows)
	if len(sizes) != 2 || sizes[0] != 5 || sizes[1] != 1 {
		t.Fatalf("unexpected rows %v", sizes)
	}
}

func TestLayoutSelectTakesFullRow(t *testing.T) {
	sel := &Select[string]{ID: "pick", Options: func() []Option[string] { return []Option[string]{{Key: "a", Label: "A"}} }}
	components := []Component{&Button{ID: "x"}, sel, &Button{ID: "y"}, &Button{ID: "z"}}
	rows, err := Layout(components, renderPlain)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	sizes := rowSizes(rows)
	if len(sizes) != 3 || sizes[0] != 1 || sizes[1] != 1 || sizes[2] != 2 {
		t.Fatalf("unexpected rows %v", sizes)
	}
}

func TestLayoutOverflow(t *testing.T) {
	if _, err := Layout(buttons(25), renderPlain); err != nil {
		t.Fatalf("25 buttons should fit: %v", err)
	}
	if _, err := Layout(buttons(26), renderPlain); !errors.Is(err, ErrLayoutOverflow) {
		t.Fatalf("expected ErrLayoutOverflow, got %v", err)
	}
}

func TestParseCustomID(t *testing.T) {
	id := CustomID("shop-create", "abc123", "submit+again")
	name, session, role, ok := ParseCustomID(id)
	if !ok || name != "shop-create" || session != "abc123" || role != "submit+again" {
		t.Fatalf("parse %q = %q %q %q %v", id, name, session, role, ok)
	}
	for _, bad := range []string{"", "nocolon", "name:session", ":s+r", "n:+r", "n:s+"} {
		if _, _, _, ok := ParseCustomID(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestButtonToggle(t *testing.T) {
	b := &Button{ID: "b"}
	b.Toggle()
	if b.Enabled() {
		t.Fatal("toggle should disable")
	}
	b.Toggle(true)
	if !b.Enabled() {
		t.Fatal("toggle(true) should enable")
	}
	ready := false
	b.When = func() bool { return ready }
	if b.Enabled() {
		t.Fatal("predicate should gate the button")
	}
	ready = true
	if !b.Enabled() {
		t.Fatal("predicate should be recomputed")
	}
}

func TestSelectRendersPlaceholderWhenEmpty(t *testing.T) {
	sel := &Select[int]{ID: "pick", Options: func() []Option[int] { return nil }}
	menu := sel.Render("id", false).(discordgo.SelectMenu)
	if !menu.Disabled || len(menu.Options) != 1 {
		t.Fatalf("empty select should render one disabled placeholder, got %+v", menu)
	}
}
