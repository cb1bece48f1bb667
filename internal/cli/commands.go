package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/mixcut/internal/config"
	"github.com/forPelevin/mixcut/internal/domain/subtitles"
	"github.com/forPelevin/mixcut/internal/pipeline"
)

func newDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration <media>",
		Short: "Print the duration of a media file in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pcfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			d, err := pipeline.MediaDuration(context.Background(), pcfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(d.Seconds(), 'f', 3, 64))
			return nil
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List caption style presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows [][]string
			for _, id := range subtitles.PresetIDs() {
				p, _ := subtitles.LookupPreset(id)
				fill := "#" + p.Fill
				if p.Fill == "" {
					fill = "font colour"
				}
				rows = append(rows, []string{string(id), p.Description, fill, "#" + p.Outline, "#" + p.Background})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Preset", "Look", "Fill", "Outline", "Background"},
				rows, nil,
			))
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample settings file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cfgCmd
}
