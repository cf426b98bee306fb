package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"consumer-flex-app/internal/render"
)

// Show prints the event metrics table, or the snapshot archive when
// opts.Snapshots asks for it.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Snapshots > 0 {
		return a.showSnapshots(ctx, opts.Snapshots)
	}

	svc, closeSvc, err := a.buildService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	result, err := svc.Result(ctx)
	if err != nil {
		return err
	}

	if err := render.WriteMetricsTable(os.Stdout, result); err != nil {
		return err
	}

	top := a.Config.ResolveTopProviders(opts.TopProviders)
	if len(result.ProviderTotals) > 0 && top > 0 {
		fmt.Fprintf(os.Stdout, "\nTop %d providers by same-day forecast:\n", top)
		if err := render.WriteTopProviders(os.Stdout, result.ProviderTotals, top); err != nil {
			return err
		}
	}
	return nil
}

// showSnapshots lists the most recent archived refreshes.
func (a *App) showSnapshots(ctx context.Context, limit int) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show snapshots")
	}
	if closeStore != nil {
		defer closeStore()
	}

	total, err := store.CountSnapshots(ctx)
	if err != nil {
		return err
	}
	snapshots, err := store.ListRecentSnapshots(ctx, limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	fmt.Fprintf(os.Stdout, "Archive: %d snapshots\n\n", total)
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Fetched (UTC)\tBids\tRequirements\tSummaries\tRegions\tLatest Event")
	for _, snap := range snapshots {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%d\t%d\t%d\t%s\n",
			snap.FetchedAt.UTC().Format(time.RFC3339),
			snap.BidRows,
			snap.RequirementRows,
			snap.SummaryRows,
			snap.RegionCount,
			snap.LatestEventDate,
		)
	}
	writer.Flush()
	return nil
}
