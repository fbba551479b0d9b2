package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	GroupID: "library",
	Short:   "Track longer-term goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			in := store.GoalInput{Title: strings.Join(args, " ")}
			if err := goalInputFromFlags(cmd, a, &in); err != nil {
				return err
			}
			g, err := a.tracker.SaveGoal(ctx, in)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, g)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added goal %s (%s)\n", ui.RenderPass("✓"), ui.RenderBold(g.Title), ui.ShortID(g.ID))
			return nil
		})
	},
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			g, err := findGoal(a, args[0])
			if err != nil {
				return err
			}
			in := store.GoalInput{
				ID:          g.ID,
				Title:       g.Title,
				Description: g.Description,
				DueDate:     g.DueDate,
				Progress:    g.Progress,
			}
			if cmd.Flags().Changed("title") {
				in.Title, _ = cmd.Flags().GetString("title")
			}
			if err := goalInputFromFlags(cmd, a, &in); err != nil {
				return err
			}
			if _, err := a.tracker.SaveGoal(ctx, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated goal %s\n", ui.RenderPass("✓"), ui.ShortID(g.ID))
			return nil
		})
	},
}

func goalInputFromFlags(cmd *cobra.Command, a *app, in *store.GoalInput) error {
	f := cmd.Flags()
	if f.Changed("desc") {
		in.Description, _ = f.GetString("desc")
	}
	if f.Changed("progress") {
		in.Progress, _ = f.GetInt("progress")
	}
	if f.Changed("due") {
		s, _ := f.GetString("due")
		due, err := dates.ParseDue(s, a.tracker.Now())
		if err != nil {
			return err
		}
		in.DueDate = due
	}
	return nil
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active and completed goals",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			active, completed := a.tracker.Goals()
			if jsonOutput {
				return printJSON(cmd, map[string]any{"active": active, "completed": completed})
			}
			if g, ok := a.tracker.GoalBanner(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(ui.RenderAccent("Focus: ")+ui.GoalLine(g, a.tracker.Now())))
			}
			ui.RenderGoals(cmd.OutOrStdout(), active, completed, a.tracker.Now())
			return nil
		})
	},
}

var goalProgressCmd = &cobra.Command{
	Use:   "progress <id> <delta>",
	Short: "Move a goal's progress by delta points (e.g. 10 or -10)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			g, err := findGoal(a, args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.UpdateGoalProgress(ctx, g.ID, delta); err != nil {
				return err
			}
			updated, _ := a.tracker.Goal(g.ID)
			fmt.Fprintln(cmd.OutOrStdout(), ui.GoalLine(updated, a.tracker.Now()))
			return nil
		})
	},
}

var goalDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a goal between active and completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			g, err := findGoal(a, args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.ToggleGoal(ctx, g.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Toggled goal %s\n", ui.RenderPass("✓"), ui.RenderBold(g.Title))
			return nil
		})
	},
}

var goalRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			g, err := findGoal(a, args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.DeleteGoal(ctx, g.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted goal %s\n", ui.RenderPass("✓"), ui.RenderBold(g.Title))
			return nil
		})
	},
}

func findGoal(a *app, arg string) (*schema.Goal, error) {
	active, completed := a.tracker.Goals()
	id, err := resolveID("goal", arg, append(active, completed...), func(g *schema.Goal) string { return g.ID })
	if err != nil {
		return nil, err
	}
	g, ok := a.tracker.Goal(id)
	if !ok {
		return nil, fmt.Errorf("no goal matches %q", arg)
	}
	return g, nil
}

func init() {
	for _, c := range []*cobra.Command{goalAddCmd, goalEditCmd} {
		c.Flags().StringP("desc", "d", "", "description")
		c.Flags().String("due", "", "target date")
		c.Flags().IntP("progress", "p", 0, "progress in percent (0-100)")
	}
	goalEditCmd.Flags().String("title", "", "new title")

	goalCmd.AddCommand(goalAddCmd, goalEditCmd, goalListCmd, goalProgressCmd, goalDoneCmd, goalRmCmd)
	rootCmd.AddCommand(goalCmd)
}
