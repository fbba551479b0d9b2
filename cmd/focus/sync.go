package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dailyfocus/dailyfocus/internal/cloudsync"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Back up to and restore from a private GitHub Gist",
	Long: `Mirror all data to a single private GitHub Gist.

Set a personal access token with the gist scope once ('focus sync token'), then
'focus sync push' creates the gist. With auto sync on, every change is uploaded
a few seconds after the last edit and each command starts by pulling the gist.`,
}

var syncPushCmd = &cobra.Command{
	Use:         "push",
	Short:       "Upload everything now",
	Args:        cobra.NoArgs,
	Annotations: noPull(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return printResult(cmd, a.engine.Upload(ctx))
		})
	},
}

var syncPullCmd = &cobra.Command{
	Use:         "pull [gist-id]",
	Short:       "Replace local data with the gist",
	Long:        `Replace local data with the gist. Passing a gist id links this machine to it.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: noPull(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			handle := ""
			if len(args) == 1 {
				handle = args[0]
			} else {
				h, err := a.gw.RemoteHandle(ctx)
				if err != nil {
					return err
				}
				handle = h
			}
			return printResult(cmd, a.engine.Download(ctx, handle))
		})
	},
}

func printResult(cmd *cobra.Command, res cloudsync.Result) error {
	if jsonOutput {
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	} else if res.Success {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.RenderPass("✓"), res.Message)
		fmt.Fprintf(cmd.OutOrStdout(), "   Gist: %s\n", res.Handle)
		fmt.Fprintf(cmd.OutOrStdout(), "   %d tasks, %d goals, %d tags, %d reading records\n",
			res.Tasks, res.Goals, res.Tags, res.Readings)
	}
	switch {
	case res.Success:
		return nil
	case cloudsync.IsRetryable(res.Err):
		return fmt.Errorf("%s (try again later)", res.Message)
	default:
		return errors.New(res.Message)
	}
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show sync settings and recent history",
	Args:        cobra.NoArgs,
	Annotations: noPull(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			handle, err := a.gw.RemoteHandle(ctx)
			if err != nil {
				return err
			}
			token, err := a.gw.Credential(ctx)
			if err != nil {
				return err
			}
			auto, err := a.gw.AutoSync(ctx)
			if err != nil {
				return err
			}
			last, synced, err := a.gw.LastSync(ctx)
			if err != nil {
				return err
			}
			history, err := a.db.RecentSyncRecords(ctx, 5)
			if err != nil {
				return err
			}

			if jsonOutput {
				status := map[string]any{
					"gist":     handle,
					"token":    token != "",
					"autoSync": auto,
					"history":  history,
				}
				if synced {
					status["lastSync"] = last
				}
				return printJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%s Sync Status\n\n", ui.RenderAccent("☁"))
			fmt.Fprintf(out, "Gist: %s\n", orNone(handle))
			fmt.Fprintf(out, "Token: %s\n", maskToken(token))
			fmt.Fprintf(out, "Auto sync: %s\n", onOff(auto))
			if synced {
				fmt.Fprintf(out, "Last sync: %s\n", last.Local().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintf(out, "Last sync: %s\n", ui.RenderMuted("never"))
			}
			if len(history) > 0 {
				fmt.Fprintf(out, "\nRecent:\n")
				for _, rec := range history {
					mark := ui.RenderPass("✓")
					if !rec.Success {
						mark = ui.RenderFail("✗")
					}
					fmt.Fprintf(out, "  %s %s %-8s %s\n", mark, rec.At.Local().Format("01-02 15:04"), rec.Op, rec.Message)
				}
			}
			fmt.Fprintln(out)
			return nil
		})
	},
}

var syncAutoCmd = &cobra.Command{
	Use:         "auto <on|off>",
	Short:       "Turn automatic upload and pull on or off",
	Args:        cobra.ExactArgs(1),
	ValidArgs:   []string{"on", "off"},
	Annotations: noPull(),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "yes":
			enabled = true
		case "off", "false", "no":
		default:
			return fmt.Errorf("want on or off, got %q", args[0])
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.gw.SetAutoSync(ctx, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Auto sync %s\n", ui.RenderPass("✓"), onOff(enabled))
			return nil
		})
	},
}

var syncTokenCmd = &cobra.Command{
	Use:         "token [token]",
	Short:       "Store the GitHub token used for the gist",
	Long:        `Store the GitHub personal access token (gist scope). Without an argument the token is read from the terminal without echo, or from stdin.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: noPull(),
	RunE: func(cmd *cobra.Command, args []string) error {
		remove, _ := cmd.Flags().GetBool("clear")
		token := ""
		switch {
		case remove:
		case len(args) == 1:
			token = args[0]
		default:
			t, err := readToken(cmd)
			if err != nil {
				return err
			}
			token = t
		}
		token = strings.TrimSpace(token)
		if token == "" && !remove {
			return fmt.Errorf("empty token; use --clear to remove the stored one")
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.gw.SetCredential(ctx, token); err != nil {
				return err
			}
			if remove {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Token removed\n", ui.RenderPass("✓"))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Token saved (%s)\n", ui.RenderPass("✓"), maskToken(token))
			}
			return nil
		})
	},
}

func readToken(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "GitHub token: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return line, nil
}

func maskToken(token string) string {
	switch {
	case token == "":
		return ui.RenderMuted("not set")
	case len(token) <= 8:
		return "****"
	default:
		return token[:4] + "…" + token[len(token)-4:]
	}
}

func onOff(b bool) string {
	if b {
		return ui.RenderPass("on")
	}
	return ui.RenderMuted("off")
}

func orNone(s string) string {
	if s == "" {
		return ui.RenderMuted("none")
	}
	return s
}

func init() {
	syncTokenCmd.Flags().Bool("clear", false, "remove the stored token")

	syncCmd.AddCommand(syncPushCmd, syncPullCmd, syncStatusCmd, syncAutoCmd, syncTokenCmd)
	rootCmd.AddCommand(syncCmd)
}
