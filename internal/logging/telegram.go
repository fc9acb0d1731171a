package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"shopify-reconciler/internal/config"
)

const (
	iconInfo    = "ℹ️"
	iconError   = "❌"
	iconWarning = "⚠️"
	iconSuccess = "✅"

	telegramBaseURL   = "https://api.telegram.org"
	telegramQueueSize = 64
)

type telegramRequest struct {
	ChatId string `json:"chat_id"`
	Text   string `json:"text"`
}

// TelegramNotifier posts messages to a chat from a background goroutine so
// logging never waits on Telegram.
type TelegramNotifier struct {
	creds      config.TelegramBotConfig
	baseURL    string
	httpClient *http.Client
	done       chan struct{}

	mu     sync.Mutex
	queue  chan string
	closed bool
}

// NewTelegramNotifier returns nil when credentials are missing.
func NewTelegramNotifier(creds config.TelegramBotConfig, httpClient *http.Client) *TelegramNotifier {
	if creds.ChatId == "" || creds.Token == "" {
		return nil
	}
	return newTelegramNotifier(creds, httpClient, telegramBaseURL)
}

func newTelegramNotifier(creds config.TelegramBotConfig, httpClient *http.Client, baseURL string) *TelegramNotifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	n := &TelegramNotifier{
		creds:      creds,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		queue:      make(chan string, telegramQueueSize),
		done:       make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *TelegramNotifier) Notify(level, value string) {
	if n == nil {
		return
	}
	msg := formatMessage(iconFor(level), level, value)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- msg:
	default:
	}
}

// Close stops intake and waits for queued messages to be sent.
func (n *TelegramNotifier) Close(ctx context.Context) error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *TelegramNotifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		_ = n.sendRequest(msg)
	}
}

func iconFor(level string) string {
	switch strings.ToUpper(level) {
	case "ERROR":
		return iconError
	case "WARNING", "WARN":
		return iconWarning
	case "SUCCESS":
		return iconSuccess
	default:
		return iconInfo
	}
}

func formatMessage(icon, level, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		v = "-"
	}
	return fmt.Sprintf("%s %s: %s", icon, level, v)
}

func (n *TelegramNotifier) sendRequest(value string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.creds.Token)

	reqBody := telegramRequest{
		ChatId: n.creds.ChatId,
		Text:   value,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := n.httpClient.Post(url, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send failed: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}
