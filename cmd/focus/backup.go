package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dailyfocus/dailyfocus/internal/persist"
	"github.com/dailyfocus/dailyfocus/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:         "export",
	GroupID:     "sync",
	Short:       "Write a backup file of everything",
	Annotations: noPull(),
	Long: `Write all tasks, goals, tags and reading records to a backup file.

Without --output the file is named dailyfocus-backup-YYYYMMDD-HHMMSS.<format>
in the current directory. Use --output - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("format")
		format, err := persist.ParseFormat(name)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			data, filename, err := a.tracker.Export(format)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported to %s\n", ui.RenderPass("✓"), output)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:         "import <file>",
	GroupID:     "sync",
	Short:       "Replace everything with a backup file",
	Annotations: noPull(),
	Long: `Replace all local tasks, goals, tags and reading records with the content
of a backup file. The format follows the file extension unless --format is
given; use - to read JSON from stdin. An invalid file changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := persist.FormatOf(path)
		if cmd.Flags().Changed("format") {
			name, _ := cmd.Flags().GetString("format")
			f, err := persist.ParseFormat(name)
			if err != nil {
				return err
			}
			format = f
		}

		var raw []byte
		var err error
		if path == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			counts, err := a.tracker.Import(ctx, raw, format)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, counts)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %s: %d tasks, %d goals, %d tags, %d reading records\n",
				ui.RenderPass("✓"), filepath.Base(path), counts.Tasks, counts.Goals, counts.Tags, counts.Readings)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(persist.FormatJSON), "json, yaml or toml")
	exportCmd.Flags().StringP("output", "o", "", "output file, or - for stdout")
	importCmd.Flags().StringP("format", "f", "", "json, yaml or toml (default from extension)")

	rootCmd.AddCommand(exportCmd, importCmd)
}
