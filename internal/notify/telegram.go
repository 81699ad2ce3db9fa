package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskmanager/internal/model"
)

// ChatLookup resolves the account that owns a task, to find its linked chat.
type ChatLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// TelegramNotifier sends reminders to the chat linked on the task's owner.
// Users without a linked chat fall back to the log.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	users    ChatLookup
	fallback Notifier
}

func NewTelegramNotifier(token string, users ChatLookup, fallback Notifier) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, users: users, fallback: fallback}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, task model.Task) error {
	user, err := n.users.FindByID(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("lookup task owner: %w", err)
	}
	if user.TelegramChatID == 0 {
		return n.fallback.Notify(ctx, task)
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, formatReminder(task))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

func formatReminder(task model.Task) string {
	var sb strings.Builder
	sb.WriteString("⏰ <b>Reminder</b>\n")
	sb.WriteString(html.EscapeString(strings.TrimSpace(task.Title)))
	if task.DueDate != nil {
		sb.WriteString(fmt.Sprintf("\n📆 due %s", task.DueDate.Format("2006-01-02 15:04")))
	}
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}
	return sb.String()
}
