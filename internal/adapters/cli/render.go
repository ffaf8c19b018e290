package cli

import (
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/search"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	heartOn   = "♥"
	heartOff  = "♡"
	heartBusy = "…"
)

var numbers = message.NewPrinter(language.English)

// formatPrice печатает цену с разделителями тысяч: $125,000.
func formatPrice(price float64) string {
	return numbers.Sprintf("$%.0f", price)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// heart - состояние кнопки избранного для карточки.
func (c *CLI) heart(id int64) string {
	if c.Sessions.Current() == nil {
		return heartOff
	}
	if c.heartsBusy.Load() {
		return heartBusy
	}
	if c.Wishlist.IsInWishlist(id) {
		return heartOn
	}
	return heartOff
}

// render печатает текущую страницу каталога.
func (c *CLI) render() {
	c.stale.Store(false)
	page := c.renderPage(c.Search.State())
	c.outMu.Lock()
	defer c.outMu.Unlock()
	c.out.Write([]byte(page))
	c.shown.Store(true)
}

func (c *CLI) renderPage(snap search.Snapshot) string {
	var b strings.Builder
	st := snap.State

	switch snap.Status {
	case search.StatusLoading:
		b.WriteString("Loading...\n")
	case search.StatusFailed:
		b.WriteString(FormatError(snap.Err))
		if len(snap.Items) > 0 {
			b.WriteString(" Showing previous results.")
		}
		b.WriteString("\n")
	}

	if len(snap.Items) == 0 && snap.Status != search.StatusFailed {
		b.WriteString("No properties match your search.\n")
	}
	for _, p := range snap.Items {
		b.WriteString(c.renderCard(p))
	}

	numbers.Fprintf(&b, "Page %d/%d · %d result(s) · type: %s · sort: %s",
		st.Page, max(snap.TotalPages, 1), snap.TotalRecords, st.TypeFilter, st.SortKey)
	if st.DebouncedQuery != "" {
		numbers.Fprintf(&b, " · search: %q", st.DebouncedQuery)
	}
	b.WriteString("\n")
	return b.String()
}

func (c *CLI) renderCard(p domain.Property) string {
	var b strings.Builder
	numbers.Fprintf(&b, "%s #%d %s", c.heart(p.ID), p.ID, p.Title)
	if p.Featured {
		b.WriteString(" [featured]")
	}
	b.WriteString("\n")
	numbers.Fprintf(&b, "    %s · %s · %s", p.Type, p.Location, formatPrice(p.Price))
	if p.Bedrooms > 0 {
		numbers.Fprintf(&b, " · %d bed%s", p.Bedrooms, plural(p.Bedrooms, "", "s"))
	}
	b.WriteString("\n")
	return b.String()
}

func (c *CLI) renderDetails(p domain.Property) {
	var b strings.Builder
	b.WriteString(c.renderCard(p))
	numbers.Fprintf(&b, "    slug: %s\n", p.Slug)
	for i, img := range p.Images {
		numbers.Fprintf(&b, "    image %d: %s\n", i+1, img)
	}
	c.outMu.Lock()
	defer c.outMu.Unlock()
	c.out.Write([]byte(b.String()))
}
