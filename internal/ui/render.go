package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
)

// QuadrantLabel is the board heading of q.
func QuadrantLabel(q schema.Quadrant) string {
	switch q {
	case schema.QuadrantUrgentImportant:
		return "重要且紧急"
	case schema.QuadrantImportant:
		return "重要不紧急"
	case schema.QuadrantUrgent:
		return "紧急不重要"
	default:
		return "不重要不紧急"
	}
}

// ShortID is the tail of id shown in lists. Time-ordered ids share their
// leading characters, so the random tail is what tells them apart.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// TaskLine renders one task on a single line.
func TaskLine(t *schema.Task, now time.Time) string {
	box := "[ ]"
	title := t.Title
	switch {
	case t.Deleted:
		box = RenderMuted("[-]")
		title = RenderMuted(title)
	case t.Completed:
		box = RenderPass("[x]")
		title = RenderMuted(title)
	}

	parts := []string{RenderMuted(ShortID(t.ID)), box, title}
	if t.Tag != "" {
		parts = append(parts, RenderAccent("#"+t.Tag))
	}
	if !t.DueDate.IsZero() {
		due := "due " + t.DueDate.String()
		if dates.IsOverdue(t, now) {
			due = RenderFail(fmt.Sprintf("%s (overdue %dd)", due, dates.OverdueDays(t, now)))
		}
		parts = append(parts, due)
	}
	if t.PostponedCount > 0 {
		parts = append(parts, RenderWarn(fmt.Sprintf("postponed ×%d", t.PostponedCount)))
	}
	if !t.Completed && !t.Deleted && t.IsInbox() {
		parts = append(parts, RenderMuted("(inbox)"))
	}
	return strings.Join(parts, "  ")
}

// RenderTasks writes one line per task, or a placeholder for an empty list.
func RenderTasks(w io.Writer, tasks []*schema.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, RenderMuted("No tasks"))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, TaskLine(t, now))
	}
}

// RenderPage writes a page of tasks followed by its position.
func RenderPage(w io.Writer, page query.Page[*schema.Task], now time.Time) {
	RenderTasks(w, page.Items, now)
	if page.TotalPages > 1 {
		fmt.Fprintln(w, RenderMuted(fmt.Sprintf("page %d/%d, %d tasks", page.Page, page.TotalPages, page.Total)))
	}
}

// RenderWeeks writes each week heading and its tasks.
func RenderWeeks(w io.Writer, weeks []query.WeekGroup, now time.Time) {
	if len(weeks) == 0 {
		fmt.Fprintln(w, RenderMuted("No tasks"))
		return
	}
	for i, g := range weeks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, RenderHeader(fmt.Sprintf("%s (%d)", g.Label, len(g.Tasks))))
		RenderTasks(w, g.Tasks, now)
	}
}

// RenderBoard draws the four quadrants as a 2x2 grid of panels.
func RenderBoard(w io.Writer, board store.Board, now time.Time) {
	panels := make([]string, 0, 4)
	for _, q := range schema.Quadrants() {
		tasks := board[q]
		var b strings.Builder
		b.WriteString(RenderBold(fmt.Sprintf("%s (%d)", QuadrantLabel(q), len(tasks))))
		for _, t := range tasks {
			b.WriteString("\n")
			b.WriteString(TaskLine(t, now))
		}
		if len(tasks) == 0 {
			b.WriteString("\n" + RenderMuted("-"))
		}
		panels = append(panels, Panel(b.String()))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, panels[0], " ", panels[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, panels[2], " ", panels[3])
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, top, bottom))
}

// RenderBoardPage draws one page of the board and, when there are more,
// the page position.
func RenderBoardPage(w io.Writer, bp store.BoardPage, now time.Time) {
	RenderBoard(w, bp.Items(), now)
	if bp.TotalPages > 1 {
		fmt.Fprintln(w, RenderMuted(fmt.Sprintf("page %d/%d", bp.Page, bp.TotalPages)))
	}
}

// RenderSummary writes the statistics tiles.
func RenderSummary(w io.Writer, s query.Summary) {
	fmt.Fprintf(w, "Total: %d   Completed: %s   Inbox: %d   Rate: %s\n",
		s.Total, RenderPass(fmt.Sprint(s.Completed)), s.Inbox, RenderAccent(fmt.Sprintf("%d%%", s.Rate)))
}

// ProgressBar renders p percent as a bar of width cells.
func ProgressBar(p, width int) string {
	p = schema.ClampProgress(p)
	filled := p * width / 100
	return RenderPass(strings.Repeat("█", filled)) + RenderMuted(strings.Repeat("░", width-filled))
}

// GoalLine renders one goal with its progress and countdown.
func GoalLine(g *schema.Goal, now time.Time) string {
	parts := []string{RenderMuted(ShortID(g.ID)), g.Title, ProgressBar(g.Progress, 20), fmt.Sprintf("%3d%%", g.Progress)}
	if g.Completed {
		parts = append(parts, RenderPass("done"))
	} else if left, ok := dates.DaysLeft(g.DueDate, now); ok {
		switch {
		case left < 0:
			parts = append(parts, RenderFail(fmt.Sprintf("expired %dd ago", -left)))
		case left == 0:
			parts = append(parts, RenderWarn("due today"))
		default:
			parts = append(parts, fmt.Sprintf("%d days left", left))
		}
	}
	return strings.Join(parts, "  ")
}

// RenderGoals writes the active goals then the completed ones.
func RenderGoals(w io.Writer, active, completed []*schema.Goal, now time.Time) {
	if len(active)+len(completed) == 0 {
		fmt.Fprintln(w, RenderMuted("No goals"))
		return
	}
	if len(active) > 0 {
		fmt.Fprintln(w, RenderHeader("Active"))
		for _, g := range active {
			fmt.Fprintln(w, GoalLine(g, now))
		}
	}
	if len(completed) > 0 {
		if len(active) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, RenderHeader("Completed"))
		for _, g := range completed {
			fmt.Fprintln(w, GoalLine(g, now))
		}
	}
}

// Stars renders a 0-5 rating.
func Stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return RenderWarn(strings.Repeat("★", rating)) + RenderMuted(strings.Repeat("☆", 5-rating))
}

// RenderReadings writes the reading log, one record per block.
func RenderReadings(w io.Writer, readings []*schema.ReadingRecord) {
	if len(readings) == 0 {
		fmt.Fprintln(w, RenderMuted("No reading records"))
		return
	}
	for i, r := range readings {
		if i > 0 {
			fmt.Fprintln(w)
		}
		head := []string{RenderMuted(ShortID(r.ID)), RenderBold(r.Title)}
		if r.Author != "" {
			head = append(head, r.Author)
		}
		head = append(head, Stars(r.Rating))
		if !r.FinishedDate.IsZero() {
			head = append(head, r.FinishedDate.String())
		}
		fmt.Fprintln(w, strings.Join(head, "  "))
		if r.Summary != "" {
			fmt.Fprintln(w, "  "+r.Summary)
		}
		for _, kp := range r.KeyPoints {
			if kp != "" {
				fmt.Fprintln(w, "  - "+kp)
			}
		}
		if r.ActionItem != "" {
			fmt.Fprintln(w, "  "+RenderAccent("→ ")+r.ActionItem)
		}
	}
}
