package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dailyfocus/dailyfocus/internal/daemon"
	"github.com/dailyfocus/dailyfocus/internal/dashboard"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "advanced",
	Short:   "Run the dashboard and the import folder watcher",
	Long: `Run in the foreground until interrupted.

The dashboard serves the board, statistics and live updates over HTTP and a
websocket on the configured address. Backup files (.json, .yaml, .toml) dropped
into the import folder are imported once they stop changing and then moved to
imported/ or failed/. With auto sync on, the gist is pulled at start and every
change is uploaded after the debounce interval.`,
	Args:        cobra.NoArgs,
	Annotations: noPull(),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}

		host, port := a.cfg.Dashboard.Host, a.cfg.Dashboard.Port
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		server := dashboard.NewServer(a.tracker, &dashboard.Config{
			Host:   host,
			Port:   port,
			Logger: a.sink.Logger("dashboard"),
		})
		if err := server.Start(); err != nil {
			_ = a.Close(ctx)
			return err
		}
		detach := server.Attach()

		d, err := daemon.New(a.tracker, daemon.Config{
			ImportDir:        a.cfg.Daemon.ImportDir,
			DebounceInterval: a.cfg.Daemon.Debounce,
			Downloader:       a.engine,
			Logger:           a.sink.Logger("daemon"),
		})
		if err != nil {
			detach()
			_ = server.Stop()
			_ = a.Close(ctx)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s Dashboard on http://%s\n", ui.RenderPass("●"), server.GetAddr())
		fmt.Fprintf(out, "  Import folder: %s\n", a.cfg.Daemon.ImportDir)
		fmt.Fprintf(out, "  %s\n", ui.RenderMuted("Press Ctrl+C to stop"))

		runErr := d.Start(ctx)

		stats := d.Stats()
		fmt.Fprintf(out, "\nStopped: %d imported, %d failed\n", stats.Imported, stats.Failed)

		detach()
		if err := server.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", ui.RenderWarn("⚠"), err)
		}
		if err := a.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
			runErr = err
		}
		return runErr
	},
}

func init() {
	serveCmd.Flags().StringP("host", "H", "", "address to bind (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
