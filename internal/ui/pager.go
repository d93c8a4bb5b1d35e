package ui

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Pager slices a listing into pages. Size is consulted on every use so the listing may
// grow or shrink between renders.
type Pager struct {
	ui       *Interface
	Page     int
	PageSize int
	Size     func() int
	// OnChange runs after the page moved. It defaults to re-rendering the interface.
	OnChange func(ctx context.Context) error
}

func NewPager(ui *Interface, pageSize int, size func() int) *Pager {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Pager{ui: ui, PageSize: pageSize, Size: size}
}

// Pages returns the page count, at least 1.
func (p *Pager) Pages() int {
	n := p.Size()
	if n <= 0 {
		return 1
	}
	return (n + p.PageSize - 1) / p.PageSize
}

// Bounds returns the [start, end) slice of the current page.
func (p *Pager) Bounds() (int, int) {
	p.clamp()
	n := p.Size()
	start := p.Page * p.PageSize
	end := start + p.PageSize
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

// Footer renders "Page x/y".
func (p *Pager) Footer() string {
	p.clamp()
	return fmt.Sprintf("Page %d/%d", p.Page+1, p.Pages())
}

func (p *Pager) clamp() {
	if last := p.Pages() - 1; p.Page > last {
		p.Page = last
	}
	if p.Page < 0 {
		p.Page = 0
	}
}

// Buttons returns first, previous, next and last controls, disabled at the bounds.
func (p *Pager) Buttons() []Component {
	canBack := func() bool { p.clamp(); return p.Page > 0 }
	canForward := func() bool { p.clamp(); return p.Page < p.Pages()-1 }
	return []Component{
		&Button{ID: "page-first", Label: "«", Style: discordgo.SecondaryButton, When: canBack, OnClick: p.goTo(func() int { return 0 })},
		&Button{ID: "page-prev", Label: "‹", Style: discordgo.SecondaryButton, When: canBack, OnClick: p.goTo(func() int { return p.Page - 1 })},
		&Button{ID: "page-next", Label: "›", Style: discordgo.SecondaryButton, When: canForward, OnClick: p.goTo(func() int { return p.Page + 1 })},
		&Button{ID: "page-last", Label: "»", Style: discordgo.SecondaryButton, When: canForward, OnClick: p.goTo(func() int { return p.Pages() - 1 })},
	}
}

func (p *Pager) goTo(target func() int) func(ctx context.Context, _ *Activation) error {
	return func(ctx context.Context, _ *Activation) error {
		p.Page = target()
		p.clamp()
		if p.OnChange != nil {
			return p.OnChange(ctx)
		}
		return p.ui.Render(ctx)
	}
}

// PageOf returns the items of the current page.
func PageOf[T any](p *Pager, items []T) []T {
	start, end := p.Bounds()
	if start >= len(items) {
		return nil
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
