// Command bizflow opens the configured store and prints the current
// inventory and sales dashboard. With -export it additionally archives a
// snapshot of the full state to the configured blob backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bizflow/internal/archive"
	"bizflow/internal/config"
	"bizflow/internal/core"
	"bizflow/internal/logger"
	"bizflow/internal/report"
)

func main() {
	export := flag.Bool("export", false, "archive a state snapshot to blob storage")
	topN := flag.Int("top", 5, "number of top sellers to show")
	flag.Parse()

	if err := run(*export, *topN); err != nil {
		fmt.Fprintf(os.Stderr, "bizflow: %v\n", err)
		os.Exit(1)
	}
}

func run(export bool, topN int) error {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	log := logger.NewAdapter(zl)

	store, err := core.OpenPersistentStore(cfg.Storage, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	svc := core.NewService(store,
		core.WithLogger(log),
		core.WithMetricsRecorder(core.NewExpvarMetricsRecorder("bizflow_service")),
	)

	snapshot := svc.Snapshot()
	now := time.Now()
	summary := report.Summarize(snapshot.Sales, now)

	fmt.Printf("Products: %d  Sales: %d  Unread alerts: %d\n",
		len(snapshot.Products), len(snapshot.Sales), len(svc.UnreadNotifications()))
	fmt.Printf("Revenue  today %s  week %s  month %s\n",
		summary.TodayTotal.StringFixed(2), summary.WeekTotal.StringFixed(2), summary.MonthTotal.StringFixed(2))
	fmt.Printf("Inventory value: %s\n", report.InventoryValue(snapshot.Products).StringFixed(2))

	if low := report.LowStock(snapshot.Products); len(low) > 0 {
		fmt.Println("Low stock:")
		for _, p := range low {
			fmt.Printf("  %-28s %3d on hand (reorder at %d)\n", p.Name, p.Quantity, p.ReorderLevel)
		}
	}
	if top := report.TopSellers(snapshot.Sales, snapshot.Products, topN); len(top) > 0 {
		fmt.Println("Top sellers:")
		for _, s := range top {
			fmt.Printf("  %-28s %4d units  %s\n", s.Name, s.UnitsSold, s.Revenue.StringFixed(2))
		}
	}

	if export {
		ctx := context.Background()
		blobs, err := cfg.OpenBlob(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		info, err := archive.New(blobs, archive.WithPrefix(cfg.Archive.Prefix)).Export(ctx, snapshot)
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		log.Info("snapshot archived", "key", info.Key, "bytes", info.Size)
		fmt.Printf("Archived snapshot to %s (%d bytes)\n", info.Key, info.Size)
	}
	return nil
}
