// File: internal/bot/bot.go
package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/domain/models"
)

// Messages sent back to the user depending on the auth outcome.
const (
	msgTokenNotFound   = "Auth token not found. Try again."
	msgNoTelegramUser  = "Unable to retrieve your Telegram user. Please try again."
	msgSuccess         = "You are successfully authenticated!"
	msgInvalidToken    = "Invalid token. Please try again."
	msgUnexpectedError = "Unexpected error occurred. Try again later."
	msgConnectionError = "A connection error occurred. Please try again."
)

// AuthSubmitter relays an auth attempt to the backend.
type AuthSubmitter interface {
	SubmitAuth(ctx context.Context, req models.TelegramAuthRequest) (Outcome, error)
}

// Bot handles /start commands from Telegram users and relays the
// attached token to the backend.
type Bot struct {
	api       *tgbotapi.BotAPI
	submitter AuthSubmitter
	logger    *zap.Logger
}

// New creates a Bot over an authorized Telegram API client.
func New(api *tgbotapi.BotAPI, submitter AuthSubmitter, logger *zap.Logger) *Bot {
	return &Bot{
		api:       api,
		submitter: submitter,
		logger:    logger,
	}
}

// Start runs the long-polling loop until the context is cancelled.
func (b *Bot) Start(ctx context.Context, pollTimeout int) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Bot stopped")
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if update.Message.Command() != "start" {
		return
	}

	b.reply(update.Message.Chat.ID, b.handleStart(ctx, update.Message))
}

// handleStart processes a /start command and returns the message to
// send back to the user.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) string {
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		return msgTokenNotFound
	}

	if msg.From == nil {
		return msgNoTelegramUser
	}

	// Identity fields are relayed as received; the backend decides what
	// is acceptable.
	req := models.TelegramAuthRequest{
		Token:      token,
		TelegramID: strconv.FormatInt(msg.From.ID, 10),
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
		LastName:   msg.From.LastName,
	}

	outcome, err := b.submitter.SubmitAuth(ctx, req)
	if err != nil {
		b.logger.Error("Failed to submit auth request", zap.Error(err))
		return msgConnectionError
	}

	return messageFor(outcome)
}

func messageFor(outcome Outcome) string {
	switch outcome {
	case OutcomeSuccess:
		return msgSuccess
	case OutcomeInvalidToken:
		return msgInvalidToken
	default:
		return msgUnexpectedError
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
