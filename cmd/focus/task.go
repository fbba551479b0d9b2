package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
	"github.com/dailyfocus/dailyfocus/internal/tracker"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	GroupID: "tasks",
	Short:   "Add, organize and complete tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task to the inbox",
	Long: `Add a task to the inbox.

--due accepts today, tomorrow, thisSunday, nextMonday, nextWeek, nextMonth,
none, a YYYY-MM-DD date or a phrase such as "next friday".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			attrs, err := taskAttrsFromFlags(cmd, a, store.TaskAttrs{})
			if err != nil {
				return err
			}
			task, err := a.tracker.CreateTask(ctx, strings.Join(args, " "), attrs)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, task)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s to the inbox (%s)\n",
				ui.RenderPass("✓"), ui.RenderBold(task.Title), ui.ShortID(task.ID))
			return nil
		})
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a task's title or attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			task, err := findTask(a, args[0])
			if err != nil {
				return err
			}
			attrs, err := taskAttrsFromFlags(cmd, a, store.TaskAttrs{
				Description: task.Description,
				Priority:    task.Priority,
				Urgency:     task.Urgency,
				DueDate:     task.DueDate,
				Tag:         task.Tag,
			})
			if err != nil {
				return err
			}
			title := task.Title
			if cmd.Flags().Changed("title") {
				title, _ = cmd.Flags().GetString("title")
			}
			if _, err := a.tracker.UpdateTask(ctx, task.ID, title, attrs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %s\n", ui.RenderPass("✓"), ui.ShortID(task.ID))
			return nil
		})
	},
}

// taskAttrsFromFlags overlays the flags the user set on base.
func taskAttrsFromFlags(cmd *cobra.Command, a *app, base store.TaskAttrs) (store.TaskAttrs, error) {
	f := cmd.Flags()
	if f.Changed("desc") {
		base.Description, _ = f.GetString("desc")
	}
	if f.Changed("important") {
		base.Priority, _ = f.GetBool("important")
	}
	if f.Changed("urgent") {
		base.Urgency, _ = f.GetBool("urgent")
	}
	if f.Changed("tag") {
		base.Tag, _ = f.GetString("tag")
	}
	if f.Changed("due") {
		s, _ := f.GetString("due")
		due, err := dates.ParseDue(s, a.tracker.Now())
		if err != nil {
			return base, err
		}
		base.DueDate = due
	}
	return base, nil
}

func addTaskAttrFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("desc", "d", "", "description")
	cmd.Flags().BoolP("important", "i", false, "mark as important")
	cmd.Flags().BoolP("urgent", "u", false, "mark as urgent")
	cmd.Flags().String("due", "", "due date")
	cmd.Flags().StringP("tag", "t", "", "tag")
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := taskQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		return listTasks(cmd, q)
	},
}

var taskSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find tasks whose title or description contains text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := taskQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		q.Search = strings.Join(args, " ")
		return listTasks(cmd, q)
	},
}

func listTasks(cmd *cobra.Command, q tracker.TaskQuery) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		page := a.tracker.Tasks(q)
		if jsonOutput {
			return printJSON(cmd, page)
		}
		ui.RenderPage(cmd.OutOrStdout(), page, a.tracker.Now())
		return nil
	})
}

var taskWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "List tasks grouped by creation week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := taskQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			weeks := a.tracker.Weeks(q)
			if jsonOutput {
				return printJSON(cmd, weeks)
			}
			ui.RenderWeeks(cmd.OutOrStdout(), weeks, a.tracker.Now())
			return nil
		})
	},
}

func addTaskQueryFlags(cmd *cobra.Command, view query.View) {
	cmd.Flags().String("view", string(view), "all, active, completed, inbox, organized or deleted")
	cmd.Flags().String("status", "", "all, pending, completed or overdue")
	cmd.Flags().StringP("tag", "t", "", "only tasks with this tag")
	addRangeFlags(cmd)
	cmd.Flags().String("field", string(query.FieldCreated), "date matched by --period: created, due or due-or-created")
	cmd.Flags().String("sort", string(query.SortDateDesc), "date-desc, date-asc or title")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("page-size", 20, "tasks per page (0 for all)")
}

func taskQueryFromFlags(cmd *cobra.Command) (tracker.TaskQuery, error) {
	f := cmd.Flags()
	var q tracker.TaskQuery
	var err error

	view, _ := f.GetString("view")
	if q.View, err = query.ParseView(view); err != nil {
		return q, err
	}
	status, _ := f.GetString("status")
	if q.Status, err = query.ParseStatus(status); err != nil {
		return q, err
	}
	if q.Range, err = rangeFromFlags(cmd); err != nil {
		return q, err
	}
	sort, _ := f.GetString("sort")
	if q.Sort, err = query.ParseSortKey(sort); err != nil {
		return q, err
	}
	field, _ := f.GetString("field")
	if q.Field, err = query.ParseField(field); err != nil {
		return q, err
	}
	q.Tag, _ = f.GetString("tag")
	q.Page, _ = f.GetInt("page")
	q.PageSize, _ = f.GetInt("page-size")
	return q, nil
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("period", "", "today, week, month, quarter, year or custom")
	cmd.Flags().String("from", "", "start date for --period custom (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date for --period custom (YYYY-MM-DD)")
}

func rangeFromFlags(cmd *cobra.Command) (query.Range, error) {
	period, _ := cmd.Flags().GetString("period")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if period == "" && (from != "" || to != "") {
		period = string(query.PeriodCustom)
	}
	return query.ParseRange(period, from, to)
}

var taskInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show tasks waiting to be organized",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			inbox := a.tracker.Inbox()
			if jsonOutput {
				return printJSON(cmd, inbox)
			}
			ui.RenderTasks(cmd.OutOrStdout(), inbox, a.tracker.Now())
			return nil
		})
	},
}

var taskQuadrantsCmd = &cobra.Command{
	Use:     "quadrants",
	Aliases: []string{"board"},
	Short:   "Show the Eisenhower board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeFromFlags(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("page-size")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			bp := a.tracker.QuadrantPage(r, page, size)
			if jsonOutput {
				return printJSON(cmd, bp)
			}
			ui.RenderBoardPage(cmd.OutOrStdout(), bp, a.tracker.Now())
			return nil
		})
	},
}

var taskOrganizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Move every inbox task onto the board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			n, err := a.tracker.OrganizeInbox(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMuted("Inbox is already empty"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Organized %d tasks\n", ui.RenderPass("✓"), n)
			return nil
		})
	},
}

// taskAction builds a command that applies fn to one task.
func taskAction(use, short, done string, fn func(t *tracker.Tracker) func(context.Context, string) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := findTask(a, args[0])
				if err != nil {
					return err
				}
				if _, err := fn(a.tracker)(ctx, task.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.RenderPass("✓"), done, ui.RenderBold(task.Title))
				return nil
			})
		},
	}
}

var (
	taskDoneCmd = taskAction("done", "Toggle a task between open and completed", "Toggled",
		func(t *tracker.Tracker) func(context.Context, string) (bool, error) { return t.ToggleComplete })
	taskRestoreCmd = taskAction("restore", "Restore a deleted task", "Restored",
		func(t *tracker.Tracker) func(context.Context, string) (bool, error) { return t.Restore })
	taskPurgeCmd = taskAction("purge", "Delete a task for good", "Purged",
		func(t *tracker.Tracker) func(context.Context, string) (bool, error) { return t.PermanentDelete })
)

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Move tasks to the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ids := make([]string, 0, len(args))
			for _, arg := range args {
				task, err := findTask(a, arg)
				if err != nil {
					return err
				}
				ids = append(ids, task.ID)
			}
			n, err := a.tracker.BatchSoftDelete(ctx, ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %d tasks to the trash\n", ui.RenderPass("✓"), n)
			return nil
		})
	},
}

var taskPostponeCmd = &cobra.Command{
	Use:   "postpone <id>",
	Short: "Push a task's due date back",
	Long: `Push a task's due date back by --days days from its current due date.
--days 0 moves the task to today, or to tomorrow after the evening cutover.
The original due date and the last five postponements are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			task, err := findTask(a, args[0])
			if err != nil {
				return err
			}
			if task.DueDate.IsZero() {
				return fmt.Errorf("task %s has no due date", ui.ShortID(task.ID))
			}
			ok, err := a.tracker.ExtendDueDate(ctx, task.ID, days)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("cannot postpone %s by %d days", ui.ShortID(task.ID), days)
			}
			updated, _ := a.tracker.Task(task.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s now due %s (postponed ×%d)\n",
				ui.RenderPass("✓"), ui.RenderBold(updated.Title), updated.DueDate, updated.PostponedCount)
			return nil
		})
	},
}

var taskStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize tasks created in a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeFromFlags(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			s := a.tracker.Stats(r)
			if jsonOutput {
				return printJSON(cmd, s)
			}
			ui.RenderSummary(cmd.OutOrStdout(), s)
			return nil
		})
	},
}

var taskCalendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM-DD]",
	Short: "Show the tasks on one day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		m := query.CalendarMode(mode)
		if m != query.CalendarDue && m != query.CalendarCreated {
			return fmt.Errorf("unknown calendar mode %q (want due or created)", mode)
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			day := dates.Today(a.tracker.Now())
			if len(args) == 1 {
				d, err := schema.ParseDate(args[0])
				if err != nil {
					return err
				}
				day = d
			}
			tasks := a.tracker.Calendar(day, m)
			if jsonOutput {
				return printJSON(cmd, tasks)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderHeader(day.String()))
			ui.RenderTasks(cmd.OutOrStdout(), tasks, a.tracker.Now())
			return nil
		})
	},
}

// findTask resolves a full id or a unique id suffix, including deleted tasks.
func findTask(a *app, arg string) (*schema.Task, error) {
	all := a.tracker.Tasks(tracker.TaskQuery{View: query.ViewAll})
	id, err := resolveID("task", arg, all.Items, func(t *schema.Task) string { return t.ID })
	if err != nil {
		return nil, err
	}
	task, ok := a.tracker.Task(id)
	if !ok {
		return nil, fmt.Errorf("no task matches %q", arg)
	}
	return task, nil
}

func init() {
	addTaskAttrFlags(taskAddCmd)
	addTaskAttrFlags(taskEditCmd)
	taskEditCmd.Flags().String("title", "", "new title")

	addTaskQueryFlags(taskListCmd, query.ViewActive)
	addTaskQueryFlags(taskSearchCmd, query.ViewAll)
	addTaskQueryFlags(taskWeekCmd, query.ViewActive)

	addRangeFlags(taskQuadrantsCmd)
	taskQuadrantsCmd.Flags().Int("page", 1, "board page, shared by all quadrants")
	taskQuadrantsCmd.Flags().Int("page-size", store.BoardPageSize, "tasks per quadrant per page (0 shows all)")
	addRangeFlags(taskStatsCmd)
	taskPostponeCmd.Flags().IntP("days", "n", 1, "days to postpone by")
	taskCalendarCmd.Flags().String("mode", string(query.CalendarDue), "place tasks by due or created date")

	taskCmd.AddCommand(taskAddCmd, taskEditCmd, taskListCmd, taskSearchCmd, taskWeekCmd,
		taskInboxCmd, taskQuadrantsCmd, taskOrganizeCmd, taskDoneCmd, taskRmCmd,
		taskRestoreCmd, taskPurgeCmd, taskPostponeCmd, taskStatsCmd, taskCalendarCmd)
	rootCmd.AddCommand(taskCmd)
}
