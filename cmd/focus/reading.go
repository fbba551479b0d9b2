package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var readingCmd = &cobra.Command{
	Use:     "reading",
	Aliases: []string{"book"},
	GroupID: "library",
	Short:   "Keep a reading log",
}

var readingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a finished book",
	Long: `Record a finished book. A title, a summary and one to three key points
are required.

Run without flags in a terminal to fill in a form instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in store.ReadingInput
		if cmd.Flags().NFlag() == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
			if err := readingForm(&in); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
		} else if err := readingInputFromFlags(cmd, &in); err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			r, err := a.tracker.SaveReading(ctx, in)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Recorded %s (%s)\n", ui.RenderPass("✓"), ui.RenderBold(r.Title), ui.ShortID(r.ID))
			return nil
		})
	},
}

var readingEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a reading record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			r, err := findReading(a, args[0])
			if err != nil {
				return err
			}
			in := store.ReadingInput{
				ID:           r.ID,
				Title:        r.Title,
				Author:       r.Author,
				DaysSpent:    r.DaysSpent,
				HoursSpent:   r.HoursSpent,
				Rating:       r.Rating,
				Summary:      r.Summary,
				KeyPoints:    r.KeyPoints,
				Thoughts:     r.Thoughts,
				ActionItem:   r.ActionItem,
				FinishedDate: r.FinishedDate,
				DeepDive:     r.DeepDive,
			}
			if err := readingInputFromFlags(cmd, &in); err != nil {
				return err
			}
			if _, err := a.tracker.SaveReading(ctx, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %s\n", ui.RenderPass("✓"), ui.RenderBold(in.Title))
			return nil
		})
	},
}

// readingInputFromFlags overlays the flags the user set on in.
func readingInputFromFlags(cmd *cobra.Command, in *store.ReadingInput) error {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("title", &in.Title)
	str("author", &in.Author)
	str("summary", &in.Summary)
	str("thoughts", &in.Thoughts)
	str("action", &in.ActionItem)
	str("quote", &in.DeepDive.Quote)
	str("next-books", &in.DeepDive.NextBooks)
	str("recommend-to", &in.DeepDive.RecommendTo)

	if f.Changed("days") {
		in.DaysSpent, _ = f.GetInt("days")
	}
	if f.Changed("hours") {
		in.HoursSpent, _ = f.GetFloat64("hours")
	}
	if f.Changed("rating") {
		in.Rating, _ = f.GetInt("rating")
	}
	if f.Changed("point") {
		in.KeyPoints, _ = f.GetStringArray("point")
	}
	if f.Changed("finished") {
		s, _ := f.GetString("finished")
		d, err := schema.ParseDate(s)
		if err != nil {
			return err
		}
		in.FinishedDate = d
	}
	return nil
}

// readingForm asks for a new record interactively.
func readingForm(in *store.ReadingInput) error {
	var (
		points   [schema.MaxKeyPoints]string
		days     string
		finished string
	)
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}
	number := func(s string) error {
		if s == "" {
			return nil
		}
		if n, err := strconv.Atoi(s); err != nil || n < 0 {
			return fmt.Errorf("enter a whole number of days")
		}
		return nil
	}
	date := func(s string) error {
		_, err := schema.ParseDate(s)
		return err
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&in.Title).Validate(required("title")),
			huh.NewInput().Title("Author").Value(&in.Author),
			huh.NewSelect[int]().Title("Rating").Options(huh.NewOptions(5, 4, 3, 2, 1, 0)...).Value(&in.Rating),
			huh.NewInput().Title("Days spent").Value(&days).Validate(number),
			huh.NewInput().Title("Finished on (YYYY-MM-DD)").Value(&finished).Validate(date),
		),
		huh.NewGroup(
			huh.NewText().Title("Summary").Value(&in.Summary).Validate(required("summary")),
			huh.NewInput().Title("Key point 1").Value(&points[0]).Validate(required("one key point")),
			huh.NewInput().Title("Key point 2").Value(&points[1]),
			huh.NewInput().Title("Key point 3").Value(&points[2]),
		),
		huh.NewGroup(
			huh.NewText().Title("Thoughts").Value(&in.Thoughts),
			huh.NewInput().Title("One thing to do").Value(&in.ActionItem),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	in.KeyPoints = points[:]
	if days != "" {
		in.DaysSpent, _ = strconv.Atoi(days)
	}
	in.FinishedDate, _ = schema.ParseDate(finished)
	return nil
}

var readingListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the reading log",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			readings := a.tracker.Readings()
			if jsonOutput {
				return printJSON(cmd, readings)
			}
			ui.RenderReadings(cmd.OutOrStdout(), readings)
			return nil
		})
	},
}

var readingRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a reading record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			r, err := findReading(a, args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.DeleteReading(ctx, r.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", ui.RenderPass("✓"), ui.RenderBold(r.Title))
			return nil
		})
	},
}

func findReading(a *app, arg string) (*schema.ReadingRecord, error) {
	id, err := resolveID("reading record", arg, a.tracker.Readings(), func(r *schema.ReadingRecord) string { return r.ID })
	if err != nil {
		return nil, err
	}
	r, ok := a.tracker.Reading(id)
	if !ok {
		return nil, fmt.Errorf("no reading record matches %q", arg)
	}
	return r, nil
}

func init() {
	for _, c := range []*cobra.Command{readingAddCmd, readingEditCmd} {
		c.Flags().String("title", "", "book title")
		c.Flags().String("author", "", "author")
		c.Flags().Int("days", 0, "days spent reading")
		c.Flags().Float64("hours", 0, "hours spent reading")
		c.Flags().IntP("rating", "r", 0, "rating from 0 to 5")
		c.Flags().StringP("summary", "s", "", "one-paragraph summary")
		c.Flags().StringArrayP("point", "p", nil, "key point (repeat up to 3 times)")
		c.Flags().String("thoughts", "", "personal thoughts")
		c.Flags().String("action", "", "one thing to do after reading")
		c.Flags().String("finished", "", "finish date (YYYY-MM-DD)")
		c.Flags().String("quote", "", "favorite quote")
		c.Flags().String("next-books", "", "books to read next")
		c.Flags().String("recommend-to", "", "who should read it")
	}

	readingCmd.AddCommand(readingAddCmd, readingEditCmd, readingListCmd, readingRmCmd)
	rootCmd.AddCommand(readingCmd)
}
