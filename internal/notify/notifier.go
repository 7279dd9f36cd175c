package notify

import (
	"context"
	"fmt"
	"strings"

	"signal_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// StatusSource — текст ответа на /status.
type StatusSource interface {
	Summary() string
}

// botAPI — то, что нужно от *tgbot.BotAPI.
type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	GetUpdatesChan(config tgbot.UpdateConfig) tgbot.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram — пассивный нотифайер + команды /status и /help из своего чата.
type Telegram struct {
	bot    botAPI
	chatID int64
	status StatusSource
}

func NewTelegram(token string, chatID int64, status StatusSource) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID, status: status}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Error("[TG] send failed: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Start: long-polling для команд.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(upd)
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}

func (t *Telegram) handleUpdate(upd tgbot.Update) {
	msg := upd.Message
	// чужие чаты игнорируем
	if msg == nil || msg.Chat == nil || msg.Chat.ID != t.chatID || !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "status":
		if t.status == nil {
			t.Send("🩺 статус недоступен")
			return
		}
		t.Send(t.status.Summary())
	case "help", "start":
		t.Send(strings.Join([]string{
			"/status — состояние пар: последний цикл, решение, ошибки",
			"/help — эта справка",
		}, "\n"))
	}
}

// Stdout — когда Telegram не настроен: всё в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Send(msg string) { logger.Info("[NOTIFY] %s", msg) }

func (s *Stdout) Sendf(format string, args ...any) { s.Send(fmt.Sprintf(format, args...)) }
