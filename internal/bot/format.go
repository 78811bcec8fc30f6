package bot

import (
	"fmt"
	"strings"
	"time"

	"noticeboard/internal/board"
	"noticeboard/internal/model"
	"noticeboard/internal/promotion"
)

const noListings = "No listings yet. Use /sell to add one."

// FormatPrice renders minor units as rands.
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%sR%d.%02d", sign, minor/100, minor%100)
}

// FormatFeedPage formats a composed feed page.
func FormatFeedPage(page board.FeedPage) string {
	if len(page.Entries) == 0 {
		return "Nothing here yet."
	}
	var b strings.Builder
	for i, e := range page.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.Kind {
		case model.EntrySponsored:
			l := e.Listing
			fmt.Fprintf(&b, "Sponsored: %s, %s\n   /listing %s\n", l.Title, FormatPrice(l.PriceMinor), l.ID)
		default:
			b.WriteString(formatPost(*e.Post))
		}
	}
	if page.HasMore {
		b.WriteString("\nMore posts: /more")
	}
	return b.String()
}

func formatPost(p model.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", p.Category, p.Title)
	if p.Message != "" {
		fmt.Fprintf(&b, "   %s\n", p.Message)
	}
	fmt.Fprintf(&b, "   by %s, %s", p.Author, p.Timestamp.UTC().Format("2 Jan 15:04"))
	if p.Reactions.Helpful > 0 || p.CommentCount > 0 {
		fmt.Fprintf(&b, ", %d helpful, %d comments", p.Reactions.Helpful, p.CommentCount)
	}
	b.WriteString("\n")
	if p.Link != "" {
		fmt.Fprintf(&b, "   %s\n", p.Link)
	}
	if p.Category == model.CategoryAlert {
		fmt.Fprintf(&b, "   /dismiss %s\n", p.ID)
	}
	return b.String()
}

// FormatListingList formats listings in the given order.
func FormatListingList(header string, listings []model.Listing, now time.Time) string {
	if len(listings) == 0 {
		return noListings
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, l := range listings {
		fmt.Fprintf(&b, "\n%s, %s", l.Title, FormatPrice(l.PriceMinor))
		if promotion.IsActiveBoost(l, now) {
			b.WriteString(" [boosted]")
		}
		if l.Category != "" {
			fmt.Fprintf(&b, " (%s)", l.Category)
		}
		fmt.Fprintf(&b, "\n   /listing %s\n", l.ID)
	}
	return b.String()
}

// FormatListing formats the full details of a listing. Receipts are shown
// to the owner only.
func FormatListing(l model.Listing, now time.Time, owner bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", l.Title)
	fmt.Fprintf(&b, "Price: %s\n", FormatPrice(l.PriceMinor))
	if l.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", l.Category)
	}
	if l.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", l.Condition)
	}
	if l.Description != "" {
		fmt.Fprintf(&b, "\n%s\n\n", l.Description)
	}
	if l.OwnerName != "" {
		fmt.Fprintf(&b, "Seller: %s\n", l.OwnerName)
	}
	if l.Contact.WhatsApp != "" {
		fmt.Fprintf(&b, "WhatsApp: %s\n", l.Contact.WhatsApp)
	}
	if l.Contact.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", l.Contact.Phone)
	}
	fmt.Fprintf(&b, "Listed: %s\n", l.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "ID: %s\n", l.ID)

	if !owner {
		return b.String()
	}

	b.WriteString("\nPromotion:\n")
	for _, p := range model.Placements {
		status := "not running"
		if promotion.IsActive(l, p, now) {
			status = promotion.RemainingLabel(l.Until(p), now)
		}
		fmt.Fprintf(&b, "  %s: %s\n", placementLabel(p), status)
	}
	if l.ReportCount > 0 {
		fmt.Fprintf(&b, "Reports: %d\n", l.ReportCount)
	}
	if len(l.Receipts) > 0 {
		b.WriteString("\nReceipts:\n")
		for _, r := range l.Receipts {
			b.WriteString("  ")
			b.WriteString(FormatReceipt(r))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatReceipt formats a receipt on one line.
func FormatReceipt(r model.Receipt) string {
	return fmt.Sprintf("%s: %s %dd, %s via %s on %s",
		r.Ref, placementLabel(r.Placement), r.Days, FormatPrice(r.AmountMinor), r.Method,
		r.Timestamp.UTC().Format("2006-01-02"))
}

// FormatPending formats a started payment awaiting its code.
func FormatPending(p board.PendingPromotion, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment of %s for a %d day %s started.\n", FormatPrice(p.AmountMinor), p.Days, placementLabel(p.Placement))
	fmt.Fprintf(&b, "A confirmation code was sent to %s.\n", p.Payer)
	fmt.Fprintf(&b, "Demo code: %s\n\n", p.ChallengeHint)
	fmt.Fprintf(&b, "Reply /confirm <code> (%s). /cancel to abort.", promotion.RemainingLabel(&p.ExpiresAt, now))
	return b.String()
}

// FormatPriceList shows the cost of every purchasable duration.
func FormatPriceList() string {
	var b strings.Builder
	b.WriteString("Prices:\n")
	for _, p := range model.Placements {
		fmt.Fprintf(&b, "  %s:", placementLabel(p))
		for _, d := range promotion.DurationOptions {
			fmt.Fprintf(&b, " %dd %s", d, FormatPrice(promotion.Price(p, d)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func placementLabel(p model.Placement) string {
	switch p {
	case model.PlacementBoost:
		return "Boost"
	case model.PlacementSponsor:
		return "Sponsor"
	}
	return string(p)
}
