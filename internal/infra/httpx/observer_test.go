package httpx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"shopify-reconciler/internal/logging"
)

func TestLogAttempts(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	observe := LogAttempts(logging.New(zap.New(core), nil))

	observe(Attempt{Target: "catalog", Number: 1, Status: 200})
	observe(Attempt{Target: "catalog", Number: 1, Status: 429, Err: errors.New("429"), Transient: true})
	observe(Attempt{Target: "update", Number: 1, Status: 422, Err: errors.New("422"), Final: true})

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "remote call failed, retrying", entries[1].Message)
	require.EqualValues(t, 429, entries[1].ContextMap()["status"])
	require.Equal(t, true, entries[2].ContextMap()["terminal"])
}
