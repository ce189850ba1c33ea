package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subsync/internal/language"
	"subsync/internal/pipeline"
	"subsync/internal/segments"
	"subsync/internal/segstore"
)

func newQualityCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quality <interview-id>",
		Short: "Report timing gaps, overlaps, and segment statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRunner(cmd, func(ctx context.Context, runner *pipeline.Runner) error {
				report, err := runner.Quality(ctx, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					statsRows(report.Stats),
					[]columnAlignment{alignLeft, alignRight},
				))

				printAdjacencies(cmd, "Gaps", report.Gaps)
				printAdjacencies(cmd, "Overlaps", report.Overlaps)
				return nil
			})
		},
	}
}

func statsRows(stats segments.Stats) [][]string {
	confidence := "n/a"
	if stats.AvgConfidence != nil {
		confidence = fmt.Sprintf("%.3f", *stats.AvgConfidence)
	}
	return [][]string{
		{"Segments", strconv.Itoa(stats.Count)},
		{"Avg duration", fmt.Sprintf("%.2fs", stats.AvgDuration)},
		{"Min duration", fmt.Sprintf("%.2fs", stats.MinDuration)},
		{"Max duration", fmt.Sprintf("%.2fs", stats.MaxDuration)},
		{"Avg confidence", confidence},
		{"Short (<1s)", strconv.Itoa(stats.ShortCount)},
		{"Long (>10s)", strconv.Itoa(stats.LongCount)},
		{"Low confidence", strconv.Itoa(stats.LowConfidenceCount)},
		{"Fallback timing", strconv.Itoa(stats.FallbackCount)},
	}
}

func printAdjacencies(cmd *cobra.Command, label string, items []segments.Adjacency) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(out, "%s: none\n", label)
		return
	}
	fmt.Fprintf(out, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(out, "  segments %d -> %d: %.3fs\n", item.PrevIndex, item.NextIndex, item.Seconds)
	}
}

func newLanguagesCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages <interview-id>",
		Short: "List translation languages stored for an interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRunner(cmd, func(ctx context.Context, runner *pipeline.Runner) error {
				codes, err := runner.Languages(ctx, args[0])
				if err != nil {
					return err
				}
				if len(codes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No translations stored")
					return nil
				}

				rows := make([][]string, 0, len(codes))
				for _, code := range codes {
					rows = append(rows, []string{code, language.DisplayName(code)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Code", "Language"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored interviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withStore(cmd, func(ctx context.Context, store *segstore.Store) error {
				interviews, err := store.ListInterviews(ctx)
				if err != nil {
					return err
				}
				if len(interviews) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No interviews stored")
					return nil
				}

				rows := make([][]string, 0, len(interviews))
				for _, interview := range interviews {
					source := interview.SourceLanguage
					if source != "" {
						source = language.DisplayName(source)
					}
					rows = append(rows, []string{
						interview.ID,
						interview.Title,
						source,
						interview.UpdatedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Source Language", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
