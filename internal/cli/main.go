package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "lingoclip <video-url>",
		Short:        "Cut a spoken-language video into study clips with aligned text",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory for extracted clips")
	root.Flags().Float64("duration", 8, "Target segment duration in seconds")
	root.Flags().Bool("translate", true, "Translate each segment")
	root.Flags().String("source-lang", "en", "Caption language")
	root.Flags().String("target-lang", "en", "Translation target language")

	// Hidden tuning flag (internal)
	root.Flags().Int("attempts", 0, "Max extraction attempts per segment")
	_ = root.Flags().MarkHidden("attempts")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
