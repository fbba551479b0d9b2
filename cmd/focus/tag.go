package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	GroupID: "library",
	Short:   "Manage the tag set",
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			tags := a.tracker.Tags()
			if jsonOutput {
				return printJSON(cmd, tags)
			}
			for _, tag := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderAccent("#"+tag))
			}
			return nil
		})
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.tracker.AddTag(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added #%s\n", ui.RenderPass("✓"), args[0])
			return nil
		})
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a tag (tasks keep it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ok, err := a.tracker.RemoveTag(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no tag named %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed #%s\n", ui.RenderPass("✓"), args[0])
			return nil
		})
	},
}

func init() {
	tagCmd.AddCommand(tagListCmd, tagAddCmd, tagRmCmd)
	rootCmd.AddCommand(tagCmd)
}
