package cli

import (
	"fmt"
	"strconv"

	"github.com/me/omicron/internal/pipeline"
	"github.com/me/omicron/internal/segments"
	"github.com/spf13/cobra"
)

func parseSpan(args []string) (segments.Segment[int64], error) {
	start, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return segments.Segment[int64]{}, fmt.Errorf("start: %w", err)
	}
	end, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return segments.Segment[int64]{}, fmt.Errorf("end: %w", err)
	}
	if start >= end {
		return segments.Segment[int64]{}, fmt.Errorf("start %d must be before end %d", start, end)
	}
	return segments.Seg(start, end), nil
}

func newSegmentsCmd() *cobra.Command {
	var output string
	var chunk, segment, overlap float64

	cmd := &cobra.Command{
		Use:   "segments <start> <end>",
		Short: "Print the output-file segments a job over [start, end) will write",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			span, err := parseSpan(args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("chunk") {
				cfg.Chunk = chunk
			}
			if cmd.Flags().Changed("segment") {
				cfg.Segment = segment
			}
			if cmd.Flags().Changed("overlap") {
				cfg.Overlap = overlap
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			segs := segments.IntegerOutputSegments(segments.Tiling{
				Start:   float64(span.Start),
				End:     float64(span.End),
				Chunk:   cfg.Chunk,
				Segment: cfg.Segment,
				Overlap: cfg.Overlap,
			})
			logger.Debug("tiled span", "start", span.Start, "end", span.End, "files", len(segs))

			if output != "" {
				if err := segments.Write(segs, output); err != nil {
					return fmt.Errorf("write segments: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d segments to %s\n", len(segs), output)
				return nil
			}
			return segments.Encode(cmd.OutOrStdout(), segs)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write segments to this file instead of stdout")
	cmd.Flags().Float64Var(&chunk, "chunk", 0, "Chunk duration (overrides config)")
	cmd.Flags().Float64Var(&segment, "segment", 0, "Segment duration (overrides config)")
	cmd.Flags().Float64Var(&overlap, "overlap", 0, "Overlap duration (overrides config)")
	return cmd
}

func newOutstandingCmd() *cobra.Command {
	var segmentFile string

	cmd := &cobra.Command{
		Use:   "outstanding <start> <end>",
		Short: "Print the parts of [start, end) not yet recorded in the segment file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			span, err := parseSpan(args)
			if err != nil {
				return err
			}
			if segmentFile != "" {
				cfg.SegmentFile = segmentFile
			}
			if cfg.SegmentFile == "" {
				return fmt.Errorf("no segment file configured (use --segment-file)")
			}

			todo, err := pipeline.New(cfg, nil, nil, nil, logger).Outstanding(span)
			if err != nil {
				return err
			}
			return segments.Encode(cmd.OutOrStdout(), todo)
		},
	}

	cmd.Flags().StringVar(&segmentFile, "segment-file", "", "Segment bookkeeping file (overrides config)")
	return cmd
}
