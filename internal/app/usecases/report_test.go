package usecases

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopify-reconciler/internal/domain/model"
)

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	summary := model.RunSummary{
		RunID:    "run-1",
		Mode:     model.JoinRemoteFirst,
		Scope:    model.ScopeBoth,
		Duration: 1500 * time.Millisecond,
	}
	summary.Add(model.UpdateOutcome{Sku: "1", Status: model.StatusUpdated, PriceChanged: true, Success: true})
	summary.Add(model.UpdateOutcome{Sku: "2", Status: model.StatusError, Detail: "price: 422"})
	summary.Add(model.UpdateOutcome{Sku: "3", Status: model.StatusNoChange, Success: true})

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summary))
	out := buf.String()
	require.Contains(t, out, "Sync run run-1 (live)")
	require.Contains(t, out, "processed:")
	require.Regexp(t, `price only:\s+1`, out)
	require.Regexp(t, `errors:\s+1`, out)
	require.Contains(t, out, "failures:")
	require.Regexp(t, `2\s+error\s+price: 422`, out)
	require.NotContains(t, out, "interrupted:")
	require.NotContains(t, out, "aborted:")
}

func TestWriteSummaryAbortedRun(t *testing.T) {
	t.Parallel()

	summary := model.RunSummary{
		RunID:   "run-2",
		Mode:    model.JoinLocalFirst,
		Scope:   model.ScopePrice,
		Aborted: "fetch local products: erp down",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summary))
	out := buf.String()
	require.Contains(t, out, "Sync run run-2 (live)")
	require.Regexp(t, `aborted:\s+fetch local products: erp down`, out)
	require.Regexp(t, `processed:\s+0`, out)
}
