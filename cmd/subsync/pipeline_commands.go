package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"subsync/internal/pipeline"
)

func newIngestCommand(cctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "ingest <interview-id> <alignment-file>",
		Short: "Detect segment boundaries from a transcript and store them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRunner(cmd, func(ctx context.Context, runner *pipeline.Runner) error {
				summary, err := runner.Ingest(ctx, args[0], title, args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ingested %s: %d segments\n", summary.InterviewID, summary.SegmentCount)
				if summary.DroppedWords > 0 {
					fmt.Fprintf(out, "Dropped %d words without usable timing\n", summary.DroppedWords)
				}
				if summary.UsedFallback {
					fmt.Fprintln(out, "No word timestamps available; synthetic sentence timing was used")
				}
				fmt.Fprintf(out, "Timing report: %d gaps, %d overlaps\n",
					len(summary.Report.Gaps), len(summary.Report.Overlaps))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Interview title")
	return cmd
}

func newTranslateCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <interview-id> [language...]",
		Short: "Translate stored segments into the target languages",
		Long: "Translate stored segments into the target languages. Without language\n" +
			"arguments the configured translation.target_languages are used. Segments\n" +
			"already in a target language keep their text verbatim.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRunner(cmd, func(ctx context.Context, runner *pipeline.Runner) error {
				outcomes, err := runner.Translate(ctx, args[0], args[1:])
				if err != nil {
					return err
				}

				codes := make([]string, 0, len(outcomes))
				for code := range outcomes {
					codes = append(codes, code)
				}
				sort.Strings(codes)

				rows := make([][]string, 0, len(codes))
				incomplete := false
				for _, code := range codes {
					outcome := outcomes[code]
					if !outcome.Complete() {
						incomplete = true
					}
					rows = append(rows, []string{
						code,
						strconv.Itoa(len(outcome.Preserved)),
						strconv.Itoa(len(outcome.Translated)),
						strconv.Itoa(len(outcome.Failed)),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Language", "Preserved", "Translated", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
				))
				if incomplete {
					return fmt.Errorf("some segments failed to translate; rerun to retry")
				}
				return nil
			})
		},
	}
}

func newExportCommand(cctx *commandContext) *cobra.Command {
	var lang string
	var format string
	var from float64
	var to float64

	cmd := &cobra.Command{
		Use:   "export <interview-id>",
		Short: "Render subtitles to the export directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRunner(cmd, func(ctx context.Context, runner *pipeline.Runner) error {
				var path string
				var err error
				if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
					path, err = runner.ExportClip(ctx, args[0], lang, format, from, to)
				} else {
					path, err = runner.Export(ctx, args[0], lang, format)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to export (default: original text)")
	cmd.Flags().StringVarP(&format, "format", "f", "srt", "Output format: srt or vtt")
	cmd.Flags().Float64Var(&from, "from", 0, "Clip window start in seconds")
	cmd.Flags().Float64Var(&to, "to", 0, "Clip window end in seconds")
	return cmd
}
