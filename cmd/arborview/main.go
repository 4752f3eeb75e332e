package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/collection"
	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/export"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/slots"
	"github.com/vanderheijden86/arbor/pkg/ui"
	"github.com/vanderheijden86/arbor/pkg/version"
	"github.com/vanderheijden86/arbor/pkg/watcher"
)

func main() {
	dbPath := flag.String("db", "", "Path to the record database (default: first configured source, else the XDG data dir)")
	sourceName := flag.String("source", "", "Use the named source from the config file")
	mode := flag.String("mode", "", "Slot projection mode: prebuilt or on-demand")
	pageSize := flag.Int("page-size", 0, "Records per page when loading")
	seed := flag.Bool("seed", false, "Seed the database with demo records and exit")
	exportFmt := flag.String("export", "", "Export all records to stdout (json or csv) and exit")
	noWatch := flag.Bool("no-watch", false, "Disable the file watcher")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("arborview %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	path, err := resolveDBPath(cfg, *dbPath, *sourceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *seed {
		if err := seedDemo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Seeded demo records into %s\n", path)
		os.Exit(0)
	}

	size := cfg.View.PageSize
	if *pageSize > 0 {
		size = *pageSize
	}

	ctx := context.Background()

	if *exportFmt != "" {
		records, err := datasource.LoadMerged(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
		if err := export.Write(os.Stdout, *exportFmt, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctrl := collection.NewController(model.Key,
		collection.WithSlotMode[model.Record](slotMode(cfg, *mode)),
		collection.WithGroupOptions(model.GroupOptions()...),
		collection.WithAggregates(model.AggregateSpecs()...),
		collection.WithLoader[model.Record](datasource.MergedLoader{Paths: []string{path}}, size),
	)
	defer ctrl.Close()

	if err := ctrl.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		fmt.Fprintln(os.Stderr, "Run with --seed to create a demo database.")
		os.Exit(1)
	}
	if cfg.View.GroupBy != "" {
		ctrl.Grouper().Select(cfg.View.GroupBy)
	}

	var opts []ui.Option
	if cfg.Watch.Enabled && !*noWatch {
		w, err := watcher.New(path,
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
			watcher.WithForcePoll(cfg.Watch.ForcePoll),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithChangeChannel(w.Changed()))
		}
	}

	p := tea.NewProgram(ui.New(ctrl, opts...), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveDBPath picks the database path from the flag, a named config source,
// the first configured source, or the XDG data dir, in that order.
func resolveDBPath(cfg config.Config, flagPath, sourceName string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if sourceName != "" {
		src := cfg.FindSource(sourceName)
		if src == nil {
			return "", fmt.Errorf("no source named %q in %s", sourceName, config.ConfigPath())
		}
		return src.ResolvedPath(), nil
	}
	if len(cfg.Sources) > 0 {
		return cfg.Sources[0].ResolvedPath(), nil
	}
	dir := config.DataDir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine data directory; pass --db")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "records.db"), nil
}

func slotMode(cfg config.Config, flagMode string) slots.Mode {
	m := cfg.View.SlotMode
	if flagMode != "" {
		m = flagMode
	}
	if m == "on-demand" || m == "ondemand" {
		return slots.OnDemand
	}
	return slots.Prebuilt
}

func seedDemo(path string) error {
	store, err := datasource.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now().UTC()
	demo := []model.Record{
		{ID: "net-001", Title: "gateway timeouts under load", Category: "infra/network", Status: model.StatusOpen, Priority: 0, Value: 13, Owner: "ana", Tags: []string{"latency"}},
		{ID: "net-002", Title: "rotate edge certificates", Category: "infra/network", Status: model.StatusBlocked, Priority: 1, Value: 5, Owner: "ben"},
		{ID: "db-001", Title: "vacuum schedule for records store", Category: "infra/storage", Status: model.StatusInProgress, Priority: 2, Value: 3, Owner: "ana"},
		{ID: "web-001", Title: "landing page rewrite", Category: "web", Status: model.StatusOpen, Priority: 1, Value: 8, Tags: []string{"copy", "design"}},
		{ID: "web-002", Title: "fix mobile nav overflow", Category: "web", Status: model.StatusOpen, Priority: 2, Value: 2, Owner: "cleo"},
		{ID: "ops-001", Title: "alert fatigue review", Category: "ops", Status: model.StatusClosed, Priority: 3, Value: 1, Owner: "ben"},
	}
	for i := range demo {
		demo[i].CreatedAt = now.Add(-time.Duration(len(demo)-i) * 24 * time.Hour)
		demo[i].UpdatedAt = now.Add(-time.Duration(i) * time.Hour)
	}
	return store.Insert(context.Background(), demo...)
}
