package ui

import (
	"context"
	"fmt"
)

// Stages swaps the whole component set of an Interface between named stages. There is no
// history: a flow moves forward or resets to the first stage.
type Stages struct {
	ui       *Interface
	first    string
	current  string
	builders map[string]func() []Component
	onReset  func()
}

func NewStages(ui *Interface, first string, build func() []Component) *Stages {
	s := &Stages{
		ui:       ui,
		first:    first,
		current:  first,
		builders: map[string]func() []Component{first: build},
	}
	ui.SetComponents(build()...)
	return s
}

// Add registers another stage.
func (s *Stages) Add(name string, build func() []Component) *Stages {
	s.builders[name] = build
	return s
}

// OnReset registers the function clearing stage-local selections.
func (s *Stages) OnReset(fn func()) *Stages {
	s.onReset = fn
	return s
}

func (s *Stages) Current() string { return s.current }

// Change tears down the current collectors, renders the target stage on the same
// message and collects for its components.
func (s *Stages) Change(ctx context.Context, name string) error {
	build, ok := s.builders[name]
	if !ok {
		return fmt.Errorf("ui: unknown stage %q", name)
	}
	s.ui.destroyCollectors()
	s.current = name
	s.ui.SetComponents(build()...)
	if err := s.ui.Render(ctx); err != nil {
		return err
	}
	s.ui.createCollectors()
	return nil
}

// Reset clears stage-local state and returns to the first stage.
func (s *Stages) Reset(ctx context.Context) error {
	if s.onReset != nil {
		s.onReset()
	}
	return s.Change(ctx, s.first)
}
