package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/mixcut/internal/config"
	"github.com/forPelevin/mixcut/internal/jobfile"
	"github.com/forPelevin/mixcut/internal/logging"
	"github.com/forPelevin/mixcut/internal/pipeline"
	"github.com/forPelevin/mixcut/internal/types"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <job.yaml>",
		Short: "Render every variant of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
	cmd.Flags().String("out", "", "Output directory (overrides out_dir)")
	cmd.Flags().Int("parallelism", 0, "CPUs to size the render gate from (overrides pipeline.parallelism)")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	return cmd
}

// loadSettings reads the settings file named by --config and applies the
// logging flags.
func loadSettings(cmd *cobra.Command) (config.Config, pipeline.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logging.Init(verbose)

	cfg, found, err := config.Load(path)
	if err != nil {
		return config.Config{}, pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	if !found {
		log.Debug().Msg("no settings file, using defaults")
	}
	return cfg, pipeline.Config{
		CacheDir:      cfg.CacheDir,
		OutDir:        cfg.OutDir,
		FontsDir:      cfg.FontsDir,
		FFmpegPath:    cfg.FFmpeg.Binary,
		FFprobePath:   cfg.FFmpeg.FFprobe,
		Preset:        cfg.FFmpeg.Preset,
		TTSBin:        cfg.Narration.Binary,
		Voice:         cfg.Narration.Voice,
		Parallelism:   cfg.Pipeline.Parallelism,
		ConcatTimeout: cfg.ConcatTimeout(),
		Logger:        log,
	}, nil
}

func run(cmd *cobra.Command, jobPath string) error {
	_, pcfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		pcfg.OutDir = out
	}
	if n, _ := cmd.Flags().GetInt("parallelism"); n > 0 {
		pcfg.Parallelism = n
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	job, err := jobfile.Load(jobPath)
	if err != nil {
		return fmt.Errorf("job: %w", err)
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	events := newEvents(os.Stderr, !noProgress, pcfg.Logger)
	pcfg.Events = events

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	variants, err := pipeline.Run(ctx, pcfg, job)
	events.finish()
	if err != nil {
		return err
	}
	printResults(cmd, job, variants, events.points())
	return nil
}

func printResults(cmd *cobra.Command, job types.Job, variants []types.OutputVariant, points int) {
	out := cmd.OutOrStdout()
	if len(variants) == 0 {
		fmt.Fprintf(out, "%s: no variants produced\n", job.Name)
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "File", "Duration", "Size", "Segments"},
		variantRows(variants),
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "%s: %d variant(s), %d point(s) deducted\n", job.Name, len(variants), points)
}
