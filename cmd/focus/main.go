// Command focus is a personal task, goal and reading tracker with an
// Eisenhower board and optional Gist backup.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dailyfocus/dailyfocus/internal/cloudsync"
	"github.com/dailyfocus/dailyfocus/internal/config"
	"github.com/dailyfocus/dailyfocus/internal/db"
	"github.com/dailyfocus/dailyfocus/internal/gist"
	"github.com/dailyfocus/dailyfocus/internal/logging"
	"github.com/dailyfocus/dailyfocus/internal/persist"
	"github.com/dailyfocus/dailyfocus/internal/tracker"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

// Set through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// Global flags
var (
	configPath string
	verbose    bool
	jsonOutput bool
	offline    bool
)

// skipPull marks commands that must not pull the remote copy before running.
const skipPull = "skip-pull"

var rootCmd = &cobra.Command{
	Use:   "focus",
	Short: "Daily focus: tasks, goals and reading notes",
	Long: `focus keeps a personal task list sorted into the four Eisenhower
quadrants, tracks goals and a reading log, and can mirror everything to a
private GitHub Gist.

New tasks land in the inbox; 'focus task organize' moves them onto the board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/dailyfocus/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show component logs")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "do not pull the remote copy before running")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Tasks:"},
		&cobra.Group{ID: "library", Title: "Goals, reading and tags:"},
		&cobra.Group{ID: "sync", Title: "Backup and sync:"},
		&cobra.Group{ID: "advanced", Title: "Advanced:"},
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		os.Exit(1)
	}
}

// app is everything a command needs, opened per invocation.
type app struct {
	cfg     *config.Config
	sink    *logging.Sink
	db      *db.DB
	gw      *persist.Gateway
	tracker *tracker.Tracker
	engine  *cloudsync.Engine
}

// openApp loads the configuration and opens the database, tracker and sync
// engine. Component logs are discarded unless quiet is false.
func openApp(ctx context.Context, quiet bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	sink, err := logging.Open(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Quiet:      quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	database, err := db.OpenContext(ctx, cfg.DBPath())
	if err != nil {
		_ = sink.Close()
		return nil, err
	}

	gw := persist.New(database, persist.Config{Logger: sink.Logger("persist")})
	tr, err := tracker.Open(ctx, gw, tracker.Config{
		Locale: cfg.Locale,
		Logger: sink.Logger("tracker"),
	})
	if err != nil {
		_ = database.Close()
		_ = sink.Close()
		return nil, err
	}
	if tr.WasReset() {
		fmt.Fprintf(os.Stderr, "%s stored data was corrupted and has been reset\n", ui.RenderWarn("⚠"))
	}

	client := gist.New(gist.Config{
		BaseURL:    cfg.Sync.APIURL,
		Filename:   cfg.Sync.Filename,
		HTTPClient: &http.Client{Timeout: cfg.Sync.Timeout},
		UserAgent:  "focus/" + Version,
		Logger:     sink.Logger("gist"),
	})
	engine := cloudsync.New(gw, tr, client, cloudsync.Config{
		DebounceInterval: cfg.Sync.Debounce,
		History:          database,
		Logger:           sink.Logger("sync"),
	})
	tr.AttachSync(engine)

	return &app{cfg: cfg, sink: sink, db: database, gw: gw, tracker: tr, engine: engine}, nil
}

// Close uploads pending changes and releases everything. A failed upload is
// reported but does not fail the command: the local change is already saved.
func (a *app) Close(ctx context.Context) error {
	if err := a.tracker.Close(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderWarn("⚠"), err)
	}
	if _, err := a.db.PruneSyncHistory(ctx, 100); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderWarn("⚠"), err)
	}
	err := a.db.Close()
	if serr := a.sink.Close(); err == nil {
		err = serr
	}
	return err
}

// withApp opens the app, pulls the remote copy when auto-sync is on, runs fn
// and closes the app.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, !verbose)
	if err != nil {
		return err
	}

	if !offline && cmd.Annotations[skipPull] == "" {
		if res := a.engine.AutoDownload(ctx); !res.Skipped && !res.Success {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderWarn("⚠"), res.Message)
		}
	}

	runErr := fn(ctx, a)
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// noPull annotates commands that manage sync themselves.
func noPull() map[string]string {
	return map[string]string{skipPull: "true"}
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveID finds the single id equal to arg or ending with it.
func resolveID[T any](kind, arg string, items []T, idOf func(T) string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var matches []string
	for _, it := range items {
		id := idOf(it)
		if id == arg {
			return id, nil
		}
		if strings.HasSuffix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s matches %q", kind, arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d %ss; use more characters", arg, len(matches), kind)
	}
}
