package logging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"shopify-reconciler/internal/config"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	closed   bool
}

func (n *recordingNotifier) Notify(level, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, level+" "+value)
}

func (n *recordingNotifier) Close(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

func TestLoggerLevelsAndFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	notifier := &recordingNotifier{}
	logger := New(zap.New(core), notifier)

	logger.LogDebug("page fetched", zap.Int("page", 2))
	logger.Log("run started")
	logger.LogWarning("duplicate sku", zap.String("sku", "123"))
	logger.LogError("update failed", errors.New("boom"), zap.String("sku", "9"))
	logger.With(zap.String("run_id", "r1")).LogSuccess("run completed")

	entries := logs.All()
	require.Len(t, entries, 5)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, zapcore.WarnLevel, entries[2].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	require.Equal(t, "boom", entries[3].ContextMap()["error"])
	require.Equal(t, "success", entries[4].ContextMap()["outcome"])
	require.Equal(t, "r1", entries[4].ContextMap()["run_id"])

	require.Equal(t, []string{"ERROR update failed: boom", "SUCCESS run completed"}, notifier.messages)

	_ = logger.Sync()
	require.True(t, notifier.closed)
}

func TestNilLoggerIsSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Log("ignored")
	logger.LogError("ignored", nil)
	require.NoError(t, logger.Sync())
}

func TestTelegramNotifierFlushesOnClose(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botsecret/sendMessage", r.URL.Path)
		var req telegramRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "42", req.ChatId)
		mu.Lock()
		texts = append(texts, req.Text)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := newTelegramNotifier(config.TelegramBotConfig{ChatId: "42", Token: "secret"}, srv.Client(), srv.URL)
	n.Notify("ERROR", "update failed")
	n.Notify("SUCCESS", "done")
	require.NoError(t, n.Close(context.Background()))
	n.Notify("INFO", "after close")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"❌ ERROR: update failed", "✅ SUCCESS: done"}, texts)
}

func TestNewTelegramNotifierRequiresCredentials(t *testing.T) {
	t.Parallel()

	require.Nil(t, NewTelegramNotifier(config.TelegramBotConfig{}, nil))
}

func TestTelegramNotifierCloseWhileNotifying(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := newTelegramNotifier(config.TelegramBotConfig{ChatId: "42", Token: "secret"}, srv.Client(), srv.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			n.Notify("ERROR", "update failed")
		}
	}()
	require.NoError(t, n.Close(context.Background()))
	wg.Wait()

	n.Notify("INFO", "after close")
	require.NoError(t, n.Close(context.Background()))
}
