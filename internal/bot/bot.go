package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meeting-secretary/internal/config"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/pipeline"
)

// Bot is the messaging channel: it maps incoming Telegram messages to
// pipeline sources and sends protocol text (or a generic failure
// notice) back. Each message is handled on its own goroutine; the
// pipeline's own admission limit rejects the overflow.
type Bot struct {
	cfg    *config.Config
	runner *pipeline.Runner
	logger logger.Logger
	api    *tgbotapi.BotAPI

	wg sync.WaitGroup
}

// New connects to Telegram, retrying transient failures with
// exponential backoff so a flaky network at boot does not kill the
// process.
func New(ctx context.Context, cfg *config.Config, runner *pipeline.Runner, log logger.Logger) (*Bot, error) {
	var api *tgbotapi.BotAPI

	connect := func() error {
		var err error
		api, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(connect, backoff.WithContext(expo, ctx)); err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	log.Info(ctx, "Connected to Telegram as @%s", api.Self.UserName)

	return &Bot{cfg: cfg, runner: runner, logger: log, api: api}, nil
}

// Run polls for updates until ctx is cancelled, then waits for
// in-flight handlers to finish.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.Telegram.PollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info(ctx, "Listening for messages (poll timeout %ds)", u.Timeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info(ctx, "Waiting for in-flight runs to finish...")
			b.wg.Wait()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			if update.Message == nil {
				continue
			}

			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error(ctx, "Failed to send reply to chat %d: %v", chatID, err)
	}
}
