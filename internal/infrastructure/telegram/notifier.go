// Package telegram implementa el transporte de notificaciones sobre la Bot
// API de Telegram.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jhoicas/spiritwatch/internal/application/monitor"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// Notifier envía mensajes y documentos a chats de Telegram. Los textos de
// alerta llegan ya formateados en HTML.
type Notifier struct {
	bot *tgbotapi.BotAPI
	log *logger.Logger
}

var _ monitor.Notifier = (*Notifier)(nil)

// NewNotifier autentica al bot contra la API de Telegram.
func NewNotifier(token string, log *logger.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("autenticar bot de telegram: %w", err)
	}
	log.Info().Str("username", bot.Self.UserName).Msg("bot de telegram autenticado")
	return &Notifier{bot: bot, log: log}, nil
}

// Bot expone el cliente subyacente para el loop de comandos.
func (n *Notifier) Bot() *tgbotapi.BotAPI { return n.bot }

// SendText envía un mensaje HTML a un chat.
func (n *Notifier) SendText(ctx context.Context, userID, text string) error {
	chatID, err := parseChatID(userID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("enviar mensaje a %s: %w", userID, err)
	}
	return nil
}

// SendDocument envía un archivo local como documento adjunto.
func (n *Notifier) SendDocument(ctx context.Context, userID, path, caption string) error {
	chatID, err := parseChatID(userID)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := n.bot.Send(doc); err != nil {
		return fmt.Errorf("enviar documento a %s: %w", userID, err)
	}
	return nil
}

func parseChatID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat id inválido %q: %w", userID, err)
	}
	return id, nil
}
