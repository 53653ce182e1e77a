package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "viewstack",
		Short: "Render nested template components from a manifest",
		Long: `viewstack renders components declared in a YAML or JSON manifest.

Components may nest other components through the render and capture
helpers, across pongo2 and html/template engines, sharing one output
buffer stack per render.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("manifest", "m", "viewstack.yaml", "component manifest (YAML or JSON)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log push/pop tracing to stderr")

	rootCmd.AddCommand(
		renderCmd(),
		listCmd(),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s\n", fmt.Sprintf(format, args...))
}
