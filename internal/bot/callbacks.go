package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"noticeboard/internal/model"
)

const (
	cmdFeed    = "feed"
	cmdMore    = "more"
	cmdListing = "listing"
	cmdReport  = "report"
	cmdCancel  = "cancel"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	from := userFrom(cb.From)

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	action, id, ok := strings.Cut(cb.Data, ":")
	if !ok {
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", from.ID,
		"username", from.Name,
	)

	switch action {
	case cmdMore:
		b.handleMore(ctx, chatID)
	case cmdListing:
		b.handleListing(ctx, chatID, from, id)
	case cmdReport:
		b.handleReport(ctx, chatID, from, id)
	case cmdCancel:
		b.handleCancel(chatID)
	case "delete_confirm":
		l, err := b.board.Listing(ctx, id)
		if err != nil || l.OwnerID != from.ID {
			b.reply(chatID, "Listing not found.")
			return
		}
		b.replyWithKeyboard(chatID,
			fmt.Sprintf("Delete %q? Its receipts are removed too. This cannot be undone.", l.Title),
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("Yes, delete", "delete:"+l.ID),
					tgbotapi.NewInlineKeyboardButtonData("Keep", "noop:"),
				),
			))
	case "delete":
		b.handleRemove(ctx, chatID, from, id)
	}
}

func moreKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("More", cmdMore+":"),
		),
	)
}

func pendingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel payment", cmdCancel+":"),
		),
	)
}

func listingKeyboard(l model.Listing, owner bool) tgbotapi.InlineKeyboardMarkup {
	if owner {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Delete", "delete_confirm:"+l.ID),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Report", cmdReport+":"+l.ID),
		),
	)
}
