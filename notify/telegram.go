package notify

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/threads-poster/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	headingSuccess = "✅ Threads post published"
	headingFailure = "❌ Threads poster failed"
)

// Summary describes the outcome of one run.
type Summary struct {
	Success   bool
	Account   string
	ObjectKey string
	PostID    string
	Err       error
}

// Text renders the summary one fact per line. Empty facts are left out.
func (s Summary) Text() string {
	heading := headingFailure
	if s.Success {
		heading = headingSuccess
	}

	lines := []string{heading}
	if s.Account != "" {
		lines = append(lines, "Threads Account: "+s.Account)
	}
	if s.ObjectKey != "" {
		lines = append(lines, "Object Key: "+s.ObjectKey)
	}
	if s.PostID != "" {
		lines = append(lines, "Thread ID: "+s.PostID)
	}
	if s.Err != nil {
		lines = append(lines, "Error: "+s.Err.Error())
	}
	return strings.Join(lines, "\n")
}

// Telegram posts run summaries to one chat. A zero value, or one built
// without a token or chat id, is disabled and Notify does nothing.
type Telegram struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:    token,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Enabled() bool {
	return t != nil && t.token != "" && t.chatID != ""
}

// Notify sends the summary. Failures are logged and returned; callers are
// expected to carry on regardless.
func (t *Telegram) Notify(summary Summary) error {
	if !t.Enabled() {
		return nil
	}

	if err := t.send(summary.Text()); err != nil {
		logger.Warn("Failed to send Telegram notification", zap.Error(err))
		return err
	}
	logger.Debug("Sent Telegram notification", zap.Bool("success", summary.Success))
	return nil
}

func (t *Telegram) send(text string) error {
	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return fmt.Errorf("telegram bot: %w", redact(err, t.token))
	}

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(t.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(t.chatID, text)
	}
	msg.DisableWebPagePreview = true

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", redact(err, t.token))
	}
	return nil
}

// redact strips the bot token, which is embedded in every request URL, from
// err's message.
func redact(err error, token string) error {
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
