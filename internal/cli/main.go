package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "mixcut",
		Short:        "Mix narrated, captioned short videos from raw clips",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "Settings file (default ./mixcut.toml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(
		newRunCmd(),
		newDurationCmd(),
		newPresetsCmd(),
		newConfigCmd(),
	)
	return root
}
