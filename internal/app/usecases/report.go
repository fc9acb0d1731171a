package usecases

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"shopify-reconciler/internal/domain/model"
)

// WriteSummary prints the operator report for a finished run.
func WriteSummary(w io.Writer, summary model.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	mode := "live"
	if summary.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(tw, "Sync run %s (%s)\n", summary.RunID, mode)
	fmt.Fprintf(tw, "join mode:\t%s\n", summary.Mode)
	fmt.Fprintf(tw, "scope:\t%s\n", summary.Scope)
	fmt.Fprintf(tw, "duration:\t%s\n", summary.Duration.Round(time.Millisecond))
	if summary.Aborted != "" {
		fmt.Fprintf(tw, "aborted:\t%s\n", summary.Aborted)
	}
	fmt.Fprintf(tw, "processed:\t%d\n", summary.Processed)
	fmt.Fprintf(tw, "price only:\t%d\n", summary.PriceOnly)
	fmt.Fprintf(tw, "inventory only:\t%d\n", summary.InventoryOnly)
	fmt.Fprintf(tw, "price and inventory:\t%d\n", summary.PriceAndInventory)
	fmt.Fprintf(tw, "no change:\t%d\n", summary.NoChange)
	fmt.Fprintf(tw, "not found local:\t%d\n", summary.NotFoundLocal)
	fmt.Fprintf(tw, "not found remote:\t%d\n", summary.NotFoundRemote)
	fmt.Fprintf(tw, "invalid local data:\t%d\n", summary.InvalidData)
	fmt.Fprintf(tw, "errors:\t%d\n", summary.Errors)
	if summary.Interrupted > 0 {
		fmt.Fprintf(tw, "interrupted:\t%d\n", summary.Interrupted)
	}
	if len(summary.Failures) > 0 {
		fmt.Fprintln(tw, "\nfailures:")
		for _, failure := range summary.Failures {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", failure.Sku, failure.Status, failure.Detail)
		}
	}
	return tw.Flush()
}
