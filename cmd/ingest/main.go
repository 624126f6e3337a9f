package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/di"
)

type options struct {
	jsonPath  string
	videoPath string
	enqueue   bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ingest --json <descriptor.json> --video <video.mp4>",
		Short: "Ingest a tracking descriptor and its video",
		Long: `Ingest maps a tracking descriptor and its video into the database in one transaction.
Re-running it with the same inputs creates nothing new.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := run(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "Path to the tracking descriptor JSON")
	cmd.Flags().StringVar(&opts.videoPath, "video", "", "Path to the video file")
	cmd.Flags().BoolVar(&opts.enqueue, "enqueue", false, "Queue the ingestion for the API server's worker instead of running it here")
	_ = cmd.MarkFlagRequired("json")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	container := di.NewContainer()
	if err := container.InitializeCore(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer container.Cleanup()

	if opts.enqueue {
		job, err := container.IngestJobService.Enqueue(ctx, opts.jsonPath, opts.videoPath, models.IngestSourceCLI)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Queued ingest job %s for %s\n", job.ID, job.Title)
		return nil
	}

	job, result, err := container.IngestJobService.RunNow(ctx, opts.jsonPath, opts.videoPath, models.IngestSourceCLI,
		func(p services.IngestProgress) {
			fmt.Fprintf(stderr, "\r[%s] %d/%d processed, %d skipped", p.Stage, p.Processed, p.Total, p.Skipped)
		})
	fmt.Fprintln(stderr)
	if err != nil {
		if errors.Is(err, services.ErrIngestInProgress) {
			return fmt.Errorf("%w (another ingestion of this video is running)", err)
		}
		return err
	}

	printSummary(stdout, job, result)
	return nil
}

func printSummary(w io.Writer, job *models.IngestJob, r *dto.IngestResult) {
	state := "existing"
	if r.VideoCreated {
		state = "created"
	}

	fmt.Fprintf(w, "Ingested %s (video %s, %s) in %s\n", r.Title, r.VideoID, state, r.Duration)
	fmt.Fprintf(w, "  job:           %s\n", job.ID)
	printCounts(w, "tracks", r.Tracks)
	printCounts(w, "frames", r.Frames)
	printCounts(w, "detections", r.Detections)
	printCounts(w, "intersections", r.Intersections)

	if len(r.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Warnings (%d):\n", len(r.Warnings))
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  %s #%d: %s\n", warning.Entity, warning.Index, warning.Message)
	}
}

func printCounts(w io.Writer, name string, c dto.EntityCounts) {
	fmt.Fprintf(w, "  %-14s %d created, %d existing, %d skipped\n", name+":", c.Created, c.Existing, c.Skipped)
}
