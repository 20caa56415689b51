package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramSender delivers messages through the Telegram Bot API. The
// recipient is a chat identifier.
type TelegramSender struct {
	apiURL string
	token  string
	client *http.Client
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramSender constructs a bot sender. An empty apiURL uses the public
// Bot API endpoint.
func NewTelegramSender(apiURL, token string) *TelegramSender {
	if apiURL == "" {
		apiURL = defaultTelegramAPI
	}
	return &TelegramSender{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send implements Sender.
func (s *TelegramSender) Send(ctx context.Context, recipient string, msg Message) error {
	text := msg.Text
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + text
	}
	if msg.Link != "" {
		text += "\n" + msg.Link
	}
	payload, err := json.Marshal(telegramMessage{ChatID: recipient, Text: text})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var body telegramResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode >= 400 || !body.OK {
		return fmt.Errorf("telegram send failed, status code: %d, error: %s", resp.StatusCode, body.Description)
	}
	return nil
}
