// Package bot is the Telegram front end of the noticeboard.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"noticeboard/internal/board"
	"noticeboard/internal/config"
	"noticeboard/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Board is the application service the bot drives.
type Board interface {
	Feed(ctx context.Context, req board.FeedRequest) (board.FeedPage, error)
	Browse(ctx context.Context, req board.BrowseRequest) ([]model.Listing, error)
	Featured(ctx context.Context) ([]model.Listing, error)
	Listing(ctx context.Context, id string) (*model.Listing, error)
	CreateListing(ctx context.Context, nl board.NewListing) (model.Listing, error)
	DeleteListing(ctx context.Context, ownerID, listingID string) error
	ReportListing(ctx context.Context, userID, listingID string) (model.Listing, error)
	CreatePost(ctx context.Context, np board.NewPost) (model.Post, error)

	StartPromotion(ctx context.Context, req board.PromotionRequest) (board.PendingPromotion, error)
	ConfirmPromotion(ctx context.Context, pending board.PendingPromotion, code string) (model.Listing, model.Receipt, error)
	CancelPromotion(sessionID string)
	ClearPromotion(ctx context.Context, ownerID, listingID string, p model.Placement) (model.Listing, error)
}

// user identifies the Telegram user behind an update.
type user struct {
	ID   string
	Name string
}

func userFrom(u *tgbotapi.User) user {
	if u == nil {
		return user{}
	}
	name := u.UserName
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return user{ID: strconv.FormatInt(u.ID, 10), Name: name}
}

// Bot is the Telegram bot that handles user commands.
type Bot struct {
	api   telegramAPI
	board Board
	cfg   *config.Config
	log   *slog.Logger
	now   func() time.Time

	sessions *sessions
}

// New creates a Bot with the given Telegram token, board service, and config.
func New(token string, b Board, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:      api,
		board:    b,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		sessions: newSessions(),
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				if update.CallbackQuery.From == nil || !b.cfg.IsUserAllowed(update.CallbackQuery.From.ID) {
					continue
				}
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || update.Message.From == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", msg.ChatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(kb.InlineKeyboard) > 0 {
		msg.ReplyMarkup = kb
	}
	b.send(msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID
	from := userFrom(msg.From)

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case cmdFeed:
		b.handleFeed(ctx, chatID, args)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case cmdMore:
		b.handleMore(ctx, chatID)
	case "dismiss":
		b.handleDismiss(chatID, args)
	case "post":
		b.handlePost(ctx, chatID, from, args)
	case "market":
		b.handleMarket(ctx, chatID, args)
	case "mine":
		b.handleMine(ctx, chatID, from)
	case "featured":
		b.handleFeatured(ctx, chatID)
	case cmdListing:
		b.handleListing(ctx, chatID, from, args)
	case "sell":
		b.handleSell(ctx, chatID, from, args)
	case "remove":
		b.handleRemove(ctx, chatID, from, args)
	case cmdReport:
		b.handleReport(ctx, chatID, from, args)
	case "promote":
		b.handlePromote(ctx, chatID, from, args)
	case "confirm":
		b.handleConfirm(ctx, chatID, args)
	case cmdCancel:
		b.handleCancel(chatID)
	case "unpromote":
		b.handleUnpromote(ctx, chatID, from, args)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
