package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"noticeboard/internal/board"
	"noticeboard/internal/filter"
	"noticeboard/internal/payment"
	"noticeboard/internal/promotion"
	"noticeboard/internal/storage"
	"noticeboard/internal/validator"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the Noticeboard!

Read what is happening in your area and buy or sell locally.

Quick start:
1. /feed - latest posts
2. /market - listings for sale
3. /sell <title> | <price> | <category> - list an item

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Feed:
/feed [tab] [page] - home feed (tabs: all, trending, alerts, opportunities, events, community, lostfound)
/search <text> - search posts
/more - load more posts
/dismiss <id> - hide an alert
/post <category> <title> | <message> - publish a post

Marketplace:
/market [category] - browse listings
/featured - boosted listings
/mine - your listings
/listing <id> - listing details
/sell <title> | <price> | <category> - create a listing
/remove <id> - delete your listing
/report <id> - report a listing

Promotion:
/promote <id> <boost|sponsor> <7|14|30> <ewallet|card|eft> <phone>
/confirm <code> - confirm the pending payment
/cancel - abandon the pending payment
/unpromote <id> <boost|sponsor> - end a placement now

` + FormatPriceList())
}

func (b *Bot) handleFeed(ctx context.Context, chatID int64, args string) {
	tab, page, err := ParseFeedArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	var req board.FeedRequest
	b.sessions.with(chatID, func(cs *chatSession) {
		req = cs.startQuery(tab, "", page)
	})
	b.showFeed(ctx, chatID, req)
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /search <text>")
		return
	}

	var req board.FeedRequest
	b.sessions.with(chatID, func(cs *chatSession) {
		req = cs.startQuery(filter.TabAll, args, 1)
	})
	b.showFeed(ctx, chatID, req)
}

func (b *Bot) handleMore(ctx context.Context, chatID int64) {
	var req board.FeedRequest
	b.sessions.with(chatID, func(cs *chatSession) {
		req = cs.nextPage()
	})
	b.showFeed(ctx, chatID, req)
}

func (b *Bot) showFeed(ctx context.Context, chatID int64, req board.FeedRequest) {
	page, err := b.board.Feed(ctx, req)
	if err != nil {
		b.replyError(chatID, "load feed", err)
		return
	}

	b.sessions.with(chatID, func(cs *chatSession) {
		cs.shown = lo.Union(cs.shown, page.Sponsored)
	})

	if page.HasMore {
		b.replyWithKeyboard(chatID, FormatFeedPage(page), moreKeyboard())
		return
	}
	b.reply(chatID, FormatFeedPage(page))
}

func (b *Bot) handleDismiss(chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /dismiss <id>")
		return
	}

	b.sessions.with(chatID, func(cs *chatSession) {
		cs.dismissed[id] = true
	})
	b.reply(chatID, "Alert hidden from your feed.")
}

func (b *Bot) handlePost(ctx context.Context, chatID int64, from user, args string) {
	parsed, err := ParsePostArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	author := from.Name
	if author == "" {
		author = "Anonymous"
	}
	p, err := b.board.CreatePost(ctx, board.NewPost{
		Category: parsed.Category,
		Title:    parsed.Title,
		Message:  parsed.Message,
		Author:   author,
	})
	if err != nil {
		b.replyError(chatID, "create post", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Posted to %s: %s", p.Category, p.Title))
}

func (b *Bot) handleMarket(ctx context.Context, chatID int64, args string) {
	listings, err := b.board.Browse(ctx, board.BrowseRequest{Category: args})
	if err != nil {
		b.replyError(chatID, "browse listings", err)
		return
	}

	header := "Marketplace:"
	if args != "" {
		header = fmt.Sprintf("Marketplace, %s:", strings.ToLower(args))
	}
	b.reply(chatID, FormatListingList(header, listings, b.now()))
}

func (b *Bot) handleMine(ctx context.Context, chatID int64, from user) {
	listings, err := b.board.Browse(ctx, board.BrowseRequest{OwnerID: from.ID})
	if err != nil {
		b.replyError(chatID, "browse own listings", err)
		return
	}
	b.reply(chatID, FormatListingList("Your listings:", listings, b.now()))
}

func (b *Bot) handleFeatured(ctx context.Context, chatID int64) {
	listings, err := b.board.Featured(ctx)
	if err != nil {
		b.replyError(chatID, "featured listings", err)
		return
	}
	if len(listings) == 0 {
		b.reply(chatID, "No featured listings right now.")
		return
	}
	b.reply(chatID, FormatListingList("Featured:", listings, b.now()))
}

func (b *Bot) handleListing(ctx context.Context, chatID int64, from user, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /listing <id>")
		return
	}

	l, err := b.board.Listing(ctx, id)
	if err != nil {
		b.replyError(chatID, "get listing", err)
		return
	}
	owner := l.OwnerID == from.ID
	if board.Hidden(*l) && !owner {
		b.reply(chatID, "Listing not found.")
		return
	}
	b.replyWithKeyboard(chatID, FormatListing(*l, b.now(), owner), listingKeyboard(*l, owner))
}

func (b *Bot) handleSell(ctx context.Context, chatID int64, from user, args string) {
	parsed, err := ParseSellArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	l, err := b.board.CreateListing(ctx, board.NewListing{
		OwnerID:    from.ID,
		OwnerName:  from.Name,
		Title:      parsed.Title,
		PriceMinor: parsed.PriceMinor,
		Category:   parsed.Category,
	})
	if err != nil {
		b.replyError(chatID, "create listing", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Listing created: %s, %s\nID: %s\n\nPromote it with /promote %s boost 7 ewallet <phone>\n%s",
		l.Title, FormatPrice(l.PriceMinor), l.ID, l.ID, FormatPriceList()))
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, from user, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /remove <id>")
		return
	}

	if err := b.board.DeleteListing(ctx, from.ID, id); err != nil {
		b.replyError(chatID, "delete listing", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Listing %s deleted.", id))
}

func (b *Bot) handleReport(ctx context.Context, chatID int64, from user, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /report <id>")
		return
	}

	if _, err := b.board.ReportListing(ctx, from.ID, id); err != nil {
		b.replyError(chatID, "report listing", err)
		return
	}
	b.reply(chatID, "Thanks, the listing was reported.")
}

func (b *Bot) handlePromote(ctx context.Context, chatID int64, from user, args string) {
	parsed, err := ParsePromoteArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	// A chat has at most one payment in flight.
	var prev *board.PendingPromotion
	b.sessions.with(chatID, func(cs *chatSession) {
		prev, cs.pending = cs.pending, nil
	})
	if prev != nil {
		b.board.CancelPromotion(prev.SessionID)
	}

	pending, err := b.board.StartPromotion(ctx, board.PromotionRequest{
		OwnerID:   from.ID,
		ListingID: parsed.ListingID,
		Placement: parsed.Placement,
		Days:      parsed.Days,
		Method:    parsed.Method,
		Phone:     parsed.Phone,
	})
	if err != nil {
		b.replyError(chatID, "start promotion", err)
		return
	}

	b.sessions.with(chatID, func(cs *chatSession) {
		cs.pending = &pending
	})
	b.replyWithKeyboard(chatID, FormatPending(pending, b.now()), pendingKeyboard())
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64, args string) {
	code := strings.TrimSpace(args)
	if code == "" {
		b.reply(chatID, "Usage: /confirm <code>")
		return
	}

	var pending *board.PendingPromotion
	b.sessions.with(chatID, func(cs *chatSession) {
		pending = cs.pending
	})
	if pending == nil {
		b.reply(chatID, "No payment in progress. Start one with /promote.")
		return
	}

	l, receipt, err := b.board.ConfirmPromotion(ctx, *pending, code)
	keep := err != nil && (payment.KindOf(err) == payment.KindBadCode || ctx.Err() != nil)
	if !keep {
		b.sessions.with(chatID, func(cs *chatSession) {
			if cs.pending != nil && cs.pending.SessionID == pending.SessionID {
				cs.pending = nil
			}
		})
	}
	if err != nil {
		b.replyError(chatID, "confirm promotion", err)
		return
	}

	b.reply(chatID, fmt.Sprintf("Payment confirmed.\n%s\n\n%s for %q: %s",
		FormatReceipt(receipt), placementLabel(receipt.Placement), l.Title,
		promotion.RemainingLabel(l.Until(receipt.Placement), b.now())))
}

func (b *Bot) handleCancel(chatID int64) {
	var pending *board.PendingPromotion
	b.sessions.with(chatID, func(cs *chatSession) {
		pending, cs.pending = cs.pending, nil
	})
	if pending == nil {
		b.reply(chatID, "No payment in progress.")
		return
	}

	b.board.CancelPromotion(pending.SessionID)
	b.reply(chatID, "Payment cancelled. Your listing was not changed.")
}

func (b *Bot) handleUnpromote(ctx context.Context, chatID int64, from user, args string) {
	id, p, err := ParseUnpromoteArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	l, err := b.board.ClearPromotion(ctx, from.ID, id, p)
	if err != nil {
		b.replyError(chatID, "clear promotion", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("%s ended for %q.", placementLabel(p), l.Title))
}

// replyError tells the user what went wrong. Unexpected errors are logged
// and reported generically.
func (b *Bot) replyError(chatID int64, op string, err error) {
	text := userMessage(err)
	if text == "" {
		b.log.Error(op, "chat_id", chatID, "error", err)
		text = "Something went wrong. Please try again."
	}
	b.reply(chatID, text)
}

func userMessage(err error) string {
	switch payment.KindOf(err) {
	case payment.KindFormat:
		return "That phone number does not look right. Use 082 123 4567 or +27821234567."
	case payment.KindInvalid:
		return "The payment request is invalid."
	case payment.KindRateLimited:
		return "Too many payment attempts. Try again in a minute."
	case payment.KindNoSession:
		return "No payment in progress. Start one with /promote."
	case payment.KindExpired:
		return "The payment window closed. Start again with /promote."
	case payment.KindBadCode:
		return "Incorrect code. Try again or /cancel."
	}

	switch {
	case errors.Is(err, board.ErrNotOwner):
		return "That listing belongs to someone else."
	case errors.Is(err, storage.ErrNotFound):
		return "Listing not found."
	case errors.Is(err, board.ErrAlreadyReported):
		return "You already reported this listing today."
	}
	if fields := validator.Fields(err); len(fields) > 0 {
		return fmt.Sprintf("Invalid %s.", strings.ToLower(strings.Join(fields, ", ")))
	}
	return ""
}

